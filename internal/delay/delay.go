// Package delay provides a single-flight timed wait that can be preempted
// through its context.
package delay

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when Wait is called while another wait on the same
// Delay is still pending.
var ErrBusy = errors.New("delay: wait already in progress")

// ErrCancelled matches every *CancelledError via errors.Is.
var ErrCancelled = errors.New("delay: cancelled")

// CancelledError reports a wait that ended because its context was done.
// Cause holds context.Cause of that context.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Cause == nil {
		return ErrCancelled.Error()
	}
	return fmt.Sprintf("%v: %v", ErrCancelled, e.Cause)
}

// Is makes errors.Is(err, ErrCancelled) hold.
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// Delay is a non-reentrant timer. The zero value is ready to use.
type Delay struct {
	busy atomic.Bool
}

// New returns a Delay.
func New() *Delay {
	return &Delay{}
}

// Busy reports whether a wait is pending.
func (d *Delay) Busy() bool {
	return d.busy.Load()
}

// Wait blocks for dur or until ctx is done, whichever comes first.
//
// A call made while another is pending returns ErrBusy and leaves the
// pending one untouched, even when ctx is already done. Otherwise a context
// that is already done returns a *CancelledError without scheduling anything.
func (d *Delay) Wait(ctx context.Context, dur time.Duration) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer d.busy.Store(false)

	if ctx.Err() != nil {
		return &CancelledError{Cause: context.Cause(ctx)}
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return &CancelledError{Cause: context.Cause(ctx)}
	}
}
