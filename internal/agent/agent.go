package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
	"github.com/nerrad567/gray-logic-hostmon/internal/publisher"
)

// Connector owns the broker session. *connection.Manager satisfies it.
type Connector interface {
	Connect(ctx context.Context) error
	Connected() bool
	Disconnect()
}

// CycleRunner publishes one cycle. *publisher.Session satisfies it.
type CycleRunner interface {
	RunCycle(ctx context.Context, descriptors []metric.Descriptor, reader metric.Reader, sink publisher.Sink) (publisher.Result, error)
}

// Observer is told about every completed cycle.
type Observer interface {
	CycleCompleted(res publisher.Result)
}

// Config holds loop timing.
type Config struct {
	// RandomDelay is slept once after the first connection.
	RandomDelay time.Duration

	// LoopTime is slept after every cycle.
	LoopTime time.Duration
}

// Agent runs the reporting loop for one host.
type Agent struct {
	cfg         Config
	conn        Connector
	session     CycleRunner
	descriptors []metric.Descriptor
	reader      metric.Reader
	sink        publisher.Sink
	observers   []Observer
	logger      *logging.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Options bundles the agent's collaborators.
type Options struct {
	Config      Config
	Connector   Connector
	Session     CycleRunner
	Descriptors []metric.Descriptor
	Reader      metric.Reader
	Sink        publisher.Sink
	Observers   []Observer
	Logger      *logging.Logger
}

// New creates an Agent.
func New(opts Options) (*Agent, error) {
	switch {
	case opts.Connector == nil:
		return nil, errors.New("agent: connector is required")
	case opts.Session == nil:
		return nil, errors.New("agent: session is required")
	case opts.Reader == nil:
		return nil, errors.New("agent: reader is required")
	case opts.Sink == nil:
		return nil, errors.New("agent: sink is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Agent{
		cfg:         opts.Config,
		conn:        opts.Connector,
		session:     opts.Session,
		descriptors: opts.Descriptors,
		reader:      opts.Reader,
		sink:        opts.Sink,
		observers:   opts.Observers,
		logger:      logger,
		sleep:       sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run connects and loops until ctx is cancelled or the connection budget is
// exhausted. Cancellation is a clean stop and returns nil; exhaustion is
// returned wrapped so the caller can exit non-zero.
//
// The session is always disconnected before Run returns.
func (a *Agent) Run(ctx context.Context) error {
	defer func() {
		a.logger.Info("disconnecting from broker")
		a.conn.Disconnect()
	}()

	if err := a.conn.Connect(ctx); err != nil {
		return stopReason(ctx, fmt.Errorf("initial connect: %w", err))
	}
	a.logger.Info("broker session established")

	if a.cfg.RandomDelay > 0 {
		a.logger.Info("staggering first cycle", "delay", a.cfg.RandomDelay)
	}
	if err := a.sleep(ctx, a.cfg.RandomDelay); err != nil {
		return stopReason(ctx, err)
	}

	for {
		if !a.conn.Connected() {
			a.logger.Warn("broker session down, reconnecting")
			if err := a.conn.Connect(ctx); err != nil {
				return stopReason(ctx, fmt.Errorf("reconnect: %w", err))
			}
			a.logger.Info("broker session re-established")
		}

		res, err := a.session.RunCycle(ctx, a.descriptors, a.reader, a.sink)
		if err != nil {
			return stopReason(ctx, fmt.Errorf("running cycle: %w", err))
		}

		a.logger.Debug("cycle complete",
			"published", res.Published,
			"failed", res.Failed,
			"discovery", res.Discovery,
			"duration", res.Duration,
		)
		for _, o := range a.observers {
			o.CycleCompleted(res)
		}

		if err := a.sleep(ctx, a.cfg.LoopTime); err != nil {
			return stopReason(ctx, err)
		}
	}
}

// stopReason maps errors caused by cancellation to a clean stop.
func stopReason(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
