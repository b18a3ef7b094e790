package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/telemetry"
)

// Transport is the broker session the Manager drives.
// *mqtt.Client satisfies it.
type Transport interface {
	// Open starts a session without waiting for it to connect.
	Open() error
	// Close sends a clean disconnect and stops background I/O. Idempotent.
	Close() error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
}

// Config controls the attempt budget and backoff.
type Config struct {
	BaseDelay        time.Duration
	MaxAttempts      int
	BackoffThreshold int
}

// State is a snapshot of the connection state.
type State struct {
	Connected bool
	Attempts  int
	Backoff   time.Duration
}

// Manager establishes and tracks the broker session.
//
// Thread Safety: all methods are safe for concurrent use; transport
// callbacks may fire on any goroutine.
type Manager struct {
	transport Transport
	cfg       Config
	logger    *logging.Logger
	metrics   *telemetry.Metrics

	mu    sync.Mutex
	state State

	// wake is signalled on connect so a pending wait can end early.
	wake chan struct{}

	// wait sleeps for d; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewManager creates a Manager. logger and metrics may be nil.
func NewManager(transport Transport, cfg Config, logger *logging.Logger, metrics *telemetry.Metrics) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	m := &Manager{
		transport: transport,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		state:     State{Backoff: cfg.BaseDelay},
		wake:      make(chan struct{}, 1),
	}
	m.wait = m.sleepOrWake
	return m
}

// Connect opens the session, registers the connection callbacks and blocks
// until the session is connected, the attempt budget is exhausted, or ctx
// is cancelled.
func (m *Manager) Connect(ctx context.Context) error {
	m.transport.SetOnConnect(m.handleConnect)
	m.transport.SetOnDisconnect(m.handleDisconnect)

	// drop a stale wake-up from an earlier session
	select {
	case <-m.wake:
	default:
	}

	if err := m.transport.Open(); err != nil {
		return fmt.Errorf("opening broker session: %w", err)
	}

	m.logger.Info("waiting for a connection")
	return m.waitForConnection(ctx)
}

// waitForConnection runs the backoff loop.
func (m *Manager) waitForConnection(ctx context.Context) error {
	for {
		m.mu.Lock()
		if m.state.Connected {
			m.mu.Unlock()
			return nil
		}
		if m.state.Attempts >= m.cfg.MaxAttempts {
			attempts := m.state.Attempts
			m.mu.Unlock()
			_ = m.transport.Close()
			return fmt.Errorf("%w: unable to connect after %d attempts", ErrConnectionExhausted, attempts)
		}
		if m.state.Attempts >= m.cfg.BackoffThreshold {
			m.state.Backoff *= 2
		}
		delay := m.state.Backoff
		m.state.Attempts++
		attempt := m.state.Attempts
		m.mu.Unlock()

		m.metrics.ConnectWait()
		m.logger.Info("waiting to try again", "delay", delay, "attempt", attempt)

		if err := m.wait(ctx, delay); err != nil {
			return err
		}
	}
}

// sleepOrWake waits for d, returning early on connect or cancellation.
func (m *Manager) sleepOrWake(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-m.wake:
		return nil
	}
}

// handleConnect is the transport's on-connect callback.
func (m *Manager) handleConnect() {
	m.mu.Lock()
	m.state = State{Connected: true, Attempts: 0, Backoff: m.cfg.BaseDelay}
	m.mu.Unlock()

	m.metrics.SetConnected(true)
	m.logger.Info("client is connected")

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// handleDisconnect is the transport's on-disconnect callback, including
// broker-initiated drops. The reporting loop notices Connected() == false
// and calls Connect again.
func (m *Manager) handleDisconnect(err error) {
	m.logger.Info("client is disconnected", "error", err)
	m.Disconnect()
}

// Disconnect marks the session down and closes the transport. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.state.Connected = false
	m.mu.Unlock()

	m.metrics.SetConnected(false)

	if err := m.transport.Close(); err != nil {
		m.logger.Warn("closing broker session", "error", err)
	}
}

// Connected reports whether the session is currently up.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Connected
}

// State returns a snapshot of the connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
