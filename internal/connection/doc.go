// Package connection owns the broker session lifecycle: opening it, waiting
// for it with bounded exponential backoff, and reacting to connect and
// disconnect notifications.
//
// State machine:
//
//	Disconnected → Connecting → Connected → (lost) → Disconnected → …
//
// Backoff: the delay starts at BaseDelay. Each wait past BackoffThreshold
// doubles the current delay again, so with base 1s, threshold 3 and six
// attempts the waits are 1s, 1s, 1s, 2s, 4s, 8s, after which Connect fails
// with ErrConnectionExhausted. A successful connect resets both the attempt
// counter and the delay.
//
// Connection state is shared between the reporting loop and the transport's
// callback goroutines and is guarded by a single mutex.
package connection
