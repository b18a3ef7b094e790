package status

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-hostmon/internal/connection"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hostmon/internal/publisher"
)

// Server timeouts.
const (
	gracefulShutdownTimeout = 5 * time.Second
	readTimeout             = 10 * time.Second
	writeTimeout            = 10 * time.Second
	idleTimeout             = 60 * time.Second
)

// Connectivity reports connection manager state. *connection.Manager satisfies it.
type Connectivity interface {
	State() connection.State
}

// BrokerHealth checks the live broker session. *mqtt.Client satisfies it.
type BrokerHealth interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the status server.
type Deps struct {
	Config   config.StatusConfig
	Logger   *logging.Logger
	Gatherer prometheus.Gatherer
	Session  Connectivity
	Broker   BrokerHealth
	Host     string
	Version  string
}

// Server is the local HTTP status server.
type Server struct {
	cfg      config.StatusConfig
	logger   *logging.Logger
	gatherer prometheus.Gatherer
	session  Connectivity
	broker   BrokerHealth
	host     string
	version  string
	hub      *Hub

	last   *Snapshot
	lastMu sync.RWMutex
}

// New creates a status server. It does not listen until Run is called.
//
// Parameters:
//   - deps: Logger, Gatherer, Session and Broker are required
//
// Returns:
//   - *Server: Configured server
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gatherer == nil {
		return nil, fmt.Errorf("metrics gatherer is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session connectivity is required")
	}
	if deps.Broker == nil {
		return nil, fmt.Errorf("broker health check is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		gatherer: deps.Gatherer,
		session:  deps.Session,
		broker:   deps.Broker,
		host:     deps.Host,
		version:  deps.Version,
		hub:      NewHub(deps.Config.WebSocket, deps.Logger),
	}, nil
}

// CycleCompleted records res as the latest snapshot and pushes it to
// WebSocket subscribers.
func (s *Server) CycleCompleted(res publisher.Result) {
	snap := newSnapshot(s.host, res)

	s.lastMu.Lock()
	s.last = &snap
	s.lastMu.Unlock()

	s.hub.Broadcast(ChannelCycleCompleted, snap)
}

// Latest returns the most recent snapshot, if any.
func (s *Server) Latest() (Snapshot, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully. A listen failure is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("status server listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("status server listening", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("status server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down status server: %w", err)
	}
	return nil
}
