// Package clock supplies the wall-clock time stamped on records.
package clock

import "time"

// Clock returns the current time. Models and fixtures take a Clock so tests
// can pin timestamps.
type Clock interface {
	Now() time.Time
}

// System reads the host clock, in UTC.
//
// Thread-safety: System is stateless and safe for concurrent use.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a function to Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}

// StartOfDay returns midnight UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
