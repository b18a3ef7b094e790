// Package status serves the agent's local status surface over HTTP.
//
// Routes:
//
//	GET /health           200 while the broker session is up, 503 otherwise,
//	                      with the connection manager's attempt count and backoff
//	GET /metrics          Prometheus exposition
//	GET /api/v1/samples   last completed cycle as JSON
//	GET /ws               WebSocket stream of "cycle.completed" events
//
// The server is read-only and intended for loopback or trusted networks.
//
//	srv, err := status.New(deps)
//	go srv.Run(ctx)
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package status
