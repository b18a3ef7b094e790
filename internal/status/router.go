package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/samples", s.handleSamples)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such route")
	})

	return r
}

// handleHealth reports broker connectivity. The endpoint is healthy only
// when the connection manager and the live session both agree.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.session.State()
	brokerErr := s.broker.HealthCheck(r.Context())

	code := http.StatusOK
	health := "ok"
	if !state.Connected || brokerErr != nil {
		code = http.StatusServiceUnavailable
		health = ErrCodeUnavailable
	}

	body := map[string]any{
		"status":           health,
		"connected":        state.Connected,
		"connect_attempts": state.Attempts,
		"backoff_seconds":  state.Backoff.Seconds(),
		"host":             s.host,
		"version":          s.version,
	}
	if brokerErr != nil {
		body["broker_error"] = brokerErr.Error()
	}
	writeJSON(w, code, body)
}

// handleSamples returns the last completed cycle.
func (s *Server) handleSamples(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.Latest()
	if !ok {
		writeNotFound(w, "no cycle has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
