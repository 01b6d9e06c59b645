package engine

import "time"

// Clock supplies "now" for relative-date sub-operators.
//
// The evaluator calls Now exactly once per evaluation and threads the
// value through every comparison, so "today" and "pastWeek" in one filter
// agree on the date. Implemented by WallClock (production) and
// testutil.FixedClock (tests).
type Clock interface {
	Now() time.Time
}

// WallClock reads the system clock.
//
// Thread-safety: WallClock is stateless and safe for concurrent use.
type WallClock struct{}

// Now returns the current time in UTC.
func (WallClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}
