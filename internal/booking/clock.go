package booking

import "time"

// Clock is the pluggable "now" provider; every date comparison in the
// booking core goes through it so tests can freeze time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current local time
func (SystemClock) Now() time.Time { return time.Now() }
