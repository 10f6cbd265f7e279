// Package frame drives the per-frame animation loop over a scene graph.
// Each frame computes the elapsed time, updates every Updatable node,
// updates the camera controller and finally renders.
package frame

import (
	"sync"
	"time"
)

// Clock measures elapsed time between frames.
// It remembers a single "last frame observed" timestamp, set at construction
// and advanced by every Delta call.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock creates a clock reading time from now.
// A nil now uses time.Now, whose readings carry a monotonic component.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, last: now()}
}

// Delta returns the seconds elapsed since the previous call
// (or since construction for the first call) and advances the clock.
// A time source that goes backwards yields 0.
func (c *Clock) Delta() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	d := t.Sub(c.last)
	c.last = t
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// Reset forgets the time elapsed since the last reading, so the next Delta
// only covers time from now on. Hosts call it when resuming from a pause.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.now()
}
