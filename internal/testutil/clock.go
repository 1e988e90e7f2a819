package testutil

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing wall times for tests. Each call to
// Now advances by the step, so timestamps are deterministic and never
// collide the way real sub-millisecond calls can.
type Clock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

// NewClock creates a clock starting at start, advancing by step per call.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{t: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}
