package sequencer

import (
	"errors"
	"fmt"
	"time"
)

// ErrAlreadyPlaying is returned by Play while a previous Play is running.
var ErrAlreadyPlaying = errors.New("sequencer: already playing")

// ErrStopRequested is the cancellation cause of a note wait interrupted by a
// stop, whether requested through Scheduler.Stop or by the channel itself.
var ErrStopRequested = errors.New("sequencer: stop requested")

// SeekRequest is the cancellation cause of a note wait interrupted by
// Scheduler.SkipTo.
type SeekRequest struct {
	Target time.Duration
}

func (r *SeekRequest) Error() string {
	return fmt.Sprintf("sequencer: seek to %v requested", r.Target)
}
