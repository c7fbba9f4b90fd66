package runtime

import "time"

// Clock supplies monotonic time since the runtime started.
//
// Every interval gate (reconnect cooldown, auto-send, heartbeat) and the
// data message timestamp read this clock, so tests can drive the runtime
// with a fake.
type Clock interface {
	Now() time.Duration
}

// SystemClock measures elapsed wall-clock time from its creation using the
// monotonic reading carried by time.Time.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock whose zero is now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}
