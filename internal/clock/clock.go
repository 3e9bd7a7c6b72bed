package clock

import "time"

// Clock separates the two time sources the admission layer needs: a
// monotonic reading for interval math and a wall reading for audit
// timestamps.
type Clock interface {
	// Now returns the current time including a monotonic clock reading.
	Now() time.Time
	// Wall returns the current wall-clock time in UTC.
	Wall() time.Time
}

// System reads time from the operating system.
type System struct{}

// Now returns time.Now with its monotonic reading intact.
func (System) Now() time.Time { return time.Now() }

// Wall returns the current UTC wall-clock time.
func (System) Wall() time.Time { return time.Now().UTC() }
