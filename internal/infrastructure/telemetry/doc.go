// Package telemetry exposes the monitor's own health as Prometheus collectors.
//
// Metrics:
//   - hostmon_publish_total{frame}: successful publishes (value, discovery, grouped)
//   - hostmon_publish_failures_total{frame}: failed publishes
//   - hostmon_reader_failures_total{metric}: probes that returned no value
//   - hostmon_connect_waits_total: backoff waits while connecting
//   - hostmon_broker_connected: 1 while the session is up
//   - hostmon_cycle_duration_seconds: wall time of a reporting cycle
package telemetry
