package sequencer

import (
	"log/slog"
	"time"

	"github.com/llehouerou/scoreplay/internal/clock"
	"github.com/llehouerou/scoreplay/internal/delay"
)

// DefaultSeekBuffer is added to every seek target to absorb the time between
// the request and the loop resuming.
const DefaultSeekBuffer = 50 * time.Millisecond

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSeekBuffer overrides DefaultSeekBuffer. Negative values are treated
// as zero.
func WithSeekBuffer(d time.Duration) Option {
	return func(s *Scheduler) {
		s.seekBuffer = max(d, 0)
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDelay makes the scheduler pace notes with d instead of a private
// delay. Schedulers sharing d exclude each other: a note wait started while
// another scheduler's is pending fails Play with delay.ErrBusy.
func WithDelay(d *delay.Delay) Option {
	return func(s *Scheduler) {
		if d != nil {
			s.delay = d
		}
	}
}

// WithClock sets the stopwatch backing Position.
func WithClock(c *clock.Stopwatch) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}
