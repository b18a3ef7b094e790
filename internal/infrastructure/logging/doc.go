// Package logging provides structured logging for the host monitor.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the agent.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("published metric", "metric", "cpu_load")
//	logger.Error("publish failed", "error", err)
//
// Never log broker passwords.
package logging
