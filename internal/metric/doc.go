// Package metric defines the host metrics reported by the monitor.
//
// The Registry is a static, data-driven table mapping each Kind to its
// presentation metadata (icon, display name, unit) and an enable flag set
// from configuration. Iteration always follows declaration order so that
// grouped payloads are positionally stable.
//
// Values are produced by a Reader. Production readers live in hostprobe;
// FixedReader returns constant values for dry-run mode and tests.
package metric
