// Package clock provides the time source used for idle eviction, sweep pacing and misprediction windows.
package clock

import "time"

// Clock is a monotonic time source.
type Clock interface {
	// Now returns the current time. Successive calls on a real clock never go backwards.
	//
	// Returns:
	//   - time.Time: the current time
	Now() time.Time
}

type systemClock struct{}

// System returns a Clock backed by time.Now, which carries a monotonic reading.
//
// Returns:
//   - Clock: the process clock
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Manual is a Clock that only moves when told to. Intended for tests and replay tools.
type Manual struct {
	now time.Time
}

var _ Clock = &Manual{}

// NewManual creates a Manual clock starting at the given instant.
//
// Parameters:
//   - start: the initial time
//
// Returns:
//   - *Manual: the manual clock
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.now = m.now.Add(d)
}

// Set moves the clock to an absolute instant, which may be earlier than the current one.
func (m *Manual) Set(t time.Time) {
	m.now = t
}
