package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const interval = 300 * time.Second

var epoch = time.Unix(1_700_000_000, 0)

func lastPublished(th *Throttle) int64 {
	th.mu.Lock()
	defer th.mu.Unlock()
	return th.last
}

func TestThrottle_ColdStartIsDue(t *testing.T) {
	th := NewThrottle()
	assert.True(t, th.Due(time.Unix(1, 0), interval, true))
	assert.True(t, th.Due(epoch, interval, true))
	assert.Zero(t, lastPublished(th))
}

func TestThrottle_OncePerWindow(t *testing.T) {
	th := NewThrottle()

	assert.True(t, th.Due(epoch, interval, true))
	th.MarkPublished(epoch)

	assert.False(t, th.Due(epoch.Add(100*time.Second), interval, true))
	// boundary is strict: exactly one interval later is not yet due
	assert.False(t, th.Due(epoch.Add(interval), interval, true))
	assert.True(t, th.Due(epoch.Add(interval+time.Second), interval, true))
}

func TestThrottle_MarkPublishedResetsWindow(t *testing.T) {
	th := NewThrottle()
	th.MarkPublished(epoch)

	later := epoch.Add(400 * time.Second)
	assert.True(t, th.Due(later, interval, true))
	th.MarkPublished(later)

	assert.Equal(t, later.Unix(), lastPublished(th))
	assert.False(t, th.Due(later.Add(200*time.Second), interval, true))
}

func TestThrottle_DisabledNeverDue(t *testing.T) {
	th := NewThrottle()

	for _, offset := range []time.Duration{0, time.Hour, 24 * time.Hour} {
		assert.False(t, th.Due(epoch.Add(offset), interval, false))
	}
	assert.Zero(t, lastPublished(th), "Due must not mutate state")
}

func TestThrottle_DueDoesNotMutate(t *testing.T) {
	th := NewThrottle()
	assert.True(t, th.Due(epoch, interval, true))
	assert.True(t, th.Due(epoch, interval, true))
	assert.Zero(t, lastPublished(th))
}

func TestThrottle_ZeroInterval(t *testing.T) {
	th := NewThrottle()
	th.MarkPublished(epoch)

	assert.False(t, th.Due(epoch, 0, true))
	assert.True(t, th.Due(epoch.Add(time.Second), 0, true))
}
