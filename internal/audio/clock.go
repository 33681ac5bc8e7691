// Package audio provides the playback clock, output sinks, and the gapless
// chunk scheduler used for text-to-speech playback.
package audio

import (
	"sync"
	"time"
)

// Clock is a monotonic playback time source measured in seconds. Suspend
// freezes the reported time so in-flight scheduled sources pause rather
// than playing into a stale schedule; Resume continues from the frozen
// point. The clock is authoritative for playback position.
type Clock interface {
	Now() float64
	Suspend()
	Resume()
	Suspended() bool
}

// SystemClock is a Clock backed by the wall monotonic clock.
type SystemClock struct {
	mu          sync.Mutex
	start       time.Time
	suspendedAt float64
	suspended   bool
	// pausedTotal accumulates time spent suspended so Now stays continuous.
	pausedTotal time.Duration
}

// NewSystemClock returns a running clock starting at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns seconds elapsed since creation, excluding suspended spans.
func (c *SystemClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suspended {
		return c.suspendedAt
	}
	return (time.Since(c.start) - c.pausedTotal).Seconds()
}

// Suspend freezes the clock. No-op when already suspended.
func (c *SystemClock) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suspended {
		return
	}
	c.suspendedAt = (time.Since(c.start) - c.pausedTotal).Seconds()
	c.suspended = true
}

// Resume continues the clock from where Suspend froze it.
func (c *SystemClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.suspended {
		return
	}
	elapsed := (time.Since(c.start) - c.pausedTotal).Seconds()
	c.pausedTotal += time.Duration((elapsed - c.suspendedAt) * float64(time.Second))
	c.suspended = false
}

// Suspended reports whether the clock is currently frozen.
func (c *SystemClock) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended
}

// Ensure SystemClock implements Clock at compile time.
var _ Clock = (*SystemClock)(nil)
