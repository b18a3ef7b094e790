package publisher

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/gray-logic-hostmon/internal/discovery"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/telemetry"
	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
)

// QoS levels and retain flags per frame.
const (
	qosDiscovery = 0
	qosValue     = 1
	qosGrouped   = 1

	retainDiscovery = true
	retainValue     = true
	retainGrouped   = false
)

// Sink is where messages go. *mqtt.Client satisfies it.
type Sink interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Config controls framing and pacing.
type Config struct {
	Grouped           bool
	SleepTime         time.Duration
	DiscoveryEnabled  bool
	DiscoveryInterval time.Duration
}

// Result summarises one cycle.
type Result struct {
	Time      time.Time       `json:"time"`
	Samples   []metric.Sample `json:"-"`
	Grouped   bool            `json:"grouped"`
	Discovery bool            `json:"discovery"`
	Published int             `json:"published"`
	Failed    int             `json:"failed"`
	Duration  time.Duration   `json:"duration"`
}

// Session publishes reporting cycles for one host.
//
// Thread Safety: a Session runs one cycle at a time; RunCycle must not be
// called concurrently.
type Session struct {
	cfg      Config
	topics   mqtt.Topics
	builder  *discovery.Builder
	throttle *discovery.Throttle
	logger   *logging.Logger
	metrics  *telemetry.Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSession creates a Session. logger and metrics may be nil.
func NewSession(cfg Config, topics mqtt.Topics, builder *discovery.Builder, throttle *discovery.Throttle, logger *logging.Logger, metrics *telemetry.Metrics) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	if throttle == nil {
		throttle = discovery.NewThrottle()
	}
	return &Session{
		cfg:      cfg,
		topics:   topics,
		builder:  builder,
		throttle: throttle,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// sleepContext waits for d or until ctx is done.
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

// Gather reads every enabled descriptor in order. A reader failure yields
// an absent sample; disabled descriptors produce nothing.
func (s *Session) Gather(ctx context.Context, descriptors []metric.Descriptor, reader metric.Reader) []metric.Sample {
	samples := make([]metric.Sample, 0, len(descriptors))
	for _, d := range descriptors {
		if !d.Enabled {
			continue
		}
		v, err := reader.Read(ctx, d.Kind)
		if err != nil {
			s.logger.Warn("metric reader failed", "metric", d.Kind, "error", err)
			s.metrics.ReaderFailed(d.Kind.String())
			samples = append(samples, metric.Sample{Kind: d.Kind})
			continue
		}
		samples = append(samples, metric.Sample{Kind: d.Kind, Value: v, Present: true})
	}
	return samples
}

// RunCycle gathers and publishes one cycle. It only returns an error when
// ctx is cancelled; reader and publish failures are absorbed and counted
// in the Result.
func (s *Session) RunCycle(ctx context.Context, descriptors []metric.Descriptor, reader metric.Reader, sink Sink) (Result, error) {
	start := s.now()
	res := Result{
		Time:      start,
		Grouped:   s.cfg.Grouped,
		Discovery: s.throttle.Due(start, s.cfg.DiscoveryInterval, s.cfg.DiscoveryEnabled),
	}

	enabled := make([]metric.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Enabled {
			enabled = append(enabled, d)
		}
	}

	res.Samples = s.Gather(ctx, enabled, reader)

	var (
		discoveryOK bool
		err         error
	)
	if s.cfg.Grouped {
		discoveryOK, err = s.publishGrouped(ctx, &res, enabled, sink)
	} else {
		discoveryOK, err = s.publishEach(ctx, &res, enabled, sink)
	}

	res.Duration = s.now().Sub(start)
	s.metrics.ObserveCycle(res.Duration)

	if err != nil {
		return res, err
	}

	if res.Discovery && discoveryOK {
		s.throttle.MarkPublished(start)
	}

	return res, nil
}

// publishGrouped announces discovery (when due) then sends one combined message.
func (s *Session) publishGrouped(ctx context.Context, res *Result, enabled []metric.Descriptor, sink Sink) (bool, error) {
	discoveryOK := true
	if res.Discovery {
		for _, d := range enabled {
			ok, err := s.publishDiscovery(ctx, res, d, sink)
			if err != nil {
				return false, err
			}
			discoveryOK = discoveryOK && ok
		}
	}

	payload := GroupedPayload(res.Samples)
	s.send(res, telemetry.FrameGrouped, sink, s.topics.Grouped(), []byte(payload), qosGrouped, retainGrouped)
	return discoveryOK, nil
}

// publishEach sends discovery (when due) and value for each metric in turn.
func (s *Session) publishEach(ctx context.Context, res *Result, enabled []metric.Descriptor, sink Sink) (bool, error) {
	discoveryOK := true
	for i, d := range enabled {
		if res.Discovery {
			ok, err := s.publishDiscovery(ctx, res, d, sink)
			if err != nil {
				return false, err
			}
			discoveryOK = discoveryOK && ok
		}

		sample := res.Samples[i]
		s.send(res, telemetry.FrameValue, sink, s.topics.Value(d.Kind.String()), []byte(sample.String()), qosValue, retainValue)
		if err := s.sleep(ctx, s.cfg.SleepTime); err != nil {
			return false, err
		}
	}
	return discoveryOK, nil
}

// publishDiscovery sends the discovery config for d followed by the spacing sleep.
func (s *Session) publishDiscovery(ctx context.Context, res *Result, d metric.Descriptor, sink Sink) (bool, error) {
	ok := false
	payload, err := s.builder.Encode(d)
	if err != nil {
		s.logger.Error("building discovery payload", "metric", d.Kind, "error", err)
	} else {
		ok = s.send(res, telemetry.FrameDiscovery, sink, s.builder.Topic(d), payload, qosDiscovery, retainDiscovery)
	}
	if err := s.sleep(ctx, s.cfg.SleepTime); err != nil {
		return false, err
	}
	return ok, nil
}

// send performs one publish and records the outcome.
func (s *Session) send(res *Result, frame string, sink Sink, topic string, payload []byte, qos byte, retained bool) bool {
	err := sink.Publish(topic, payload, qos, retained)
	if err == nil {
		res.Published++
		s.metrics.Published(frame)
		s.logger.Debug("published", "topic", topic, "frame", frame)
		return true
	}

	res.Failed++
	s.metrics.PublishFailed(frame)
	if errors.Is(err, mqtt.ErrNotConnected) {
		// The disconnect callback drives reconnection.
		s.logger.Warn("publish skipped, broker session down", "topic", topic, "frame", frame)
	} else {
		s.logger.Error("publish failed", "topic", topic, "frame", frame, "error", err)
	}
	return false
}
