package discovery

import (
	"sync"
	"time"
)

// Throttle tracks when discovery messages were last published.
//
// Thread Safety: safe for concurrent use; in practice only the reporting
// loop touches it.
type Throttle struct {
	mu   sync.Mutex
	last int64 // epoch seconds; 0 means never
}

// NewThrottle returns a Throttle that has never published.
func NewThrottle() *Throttle {
	return &Throttle{}
}

// Due reports whether a discovery round should be published at now.
// It never mutates state.
func (t *Throttle) Due(now time.Time, interval time.Duration, enabled bool) bool {
	if !enabled {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return now.Unix() > t.last+int64(interval/time.Second)
}

// MarkPublished records a completed discovery round at now.
func (t *Throttle) MarkPublished(now time.Time) {
	t.mu.Lock()
	t.last = now.Unix()
	t.mu.Unlock()
}
