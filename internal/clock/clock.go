// Package clock provides the stopwatch backing playback position readouts.
package clock

import "time"

// Stopwatch measures time since it was created.
type Stopwatch struct {
	start time.Time
}

// New starts a stopwatch.
func New() *Stopwatch {
	return &Stopwatch{start: time.Now()}
}

// Elapsed returns the monotonic time since New, rounded to the millisecond.
func (s *Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start).Round(time.Millisecond)
}

// Millis returns Elapsed in whole milliseconds.
func (s *Stopwatch) Millis() int64 {
	return s.Elapsed().Milliseconds()
}
