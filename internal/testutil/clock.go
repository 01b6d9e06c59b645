package testutil

import (
	"sync"
	"time"
)

// FixedClock is a controllable clock for tests.
//
// Now returns the configured instant and counts reads, so tests can
// assert that an evaluation samples the clock exactly once. Advance moves
// the instant forward.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu    sync.Mutex
	now   time.Time
	reads int
}

// NewFixedClock creates a clock stopped at now.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// MustParseClock creates a clock from an RFC 3339 instant or a
// YYYY-MM-DD date (midnight UTC). Panics on malformed input.
func MustParseClock(s string) *FixedClock {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewFixedClock(t)
		}
	}
	panic("testutil: cannot parse clock instant " + s)
}

// Now returns the configured instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	return c.now
}

// Reads returns how many times Now has been called.
func (c *FixedClock) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Reset clears the read counter.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = 0
}
