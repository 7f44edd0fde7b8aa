package delay

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

func TestWait_Expires(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New()
		start := time.Now()

		err := d.Wait(context.Background(), 500*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 500*time.Millisecond, time.Since(start))
		assert.False(t, d.Busy())
	})
}

func TestWait_CancelledWhilePending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New()
		ctx, cancel := context.WithCancelCause(context.Background())
		start := time.Now()

		go func() {
			time.Sleep(200 * time.Millisecond)
			cancel(errStop)
		}()

		err := d.Wait(ctx, time.Second)

		require.ErrorIs(t, err, ErrCancelled)
		require.ErrorIs(t, err, errStop)
		var ce *CancelledError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, errStop, ce.Cause)
		assert.Equal(t, 200*time.Millisecond, time.Since(start))
		assert.False(t, d.Busy())
	})
}

func TestWait_AlreadyCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New()
		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(errStop)
		start := time.Now()

		err := d.Wait(ctx, time.Second)

		require.ErrorIs(t, err, ErrCancelled)
		require.ErrorIs(t, err, errStop)
		assert.Zero(t, time.Since(start))
		assert.False(t, d.Busy())
	})
}

func TestWait_AlreadyCancelledWhileBusyFailsWithErrBusy(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New()
		done := make(chan error, 1)
		go func() { done <- d.Wait(context.Background(), time.Second) }()
		synctest.Wait()
		require.True(t, d.Busy())

		ctx, cancel := context.WithCancelCause(context.Background())
		cancel(errStop)
		err := d.Wait(ctx, time.Second)

		require.ErrorIs(t, err, ErrBusy)
		assert.NotErrorIs(t, err, ErrCancelled)
		assert.True(t, d.Busy(), "first wait must still hold the delay")
		require.NoError(t, <-done)
		assert.False(t, d.Busy())
	})
}

func TestWait_AlreadyCancelledReleasesDelay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, d.Wait(ctx, time.Second), ErrCancelled)
		require.False(t, d.Busy())

		start := time.Now()
		require.NoError(t, d.Wait(context.Background(), 50*time.Millisecond))
		assert.Equal(t, 50*time.Millisecond, time.Since(start))
	})
}

func TestWait_OverlappingFailsWithErrBusy(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New()
		done := make(chan error, 1)
		go func() { done <- d.Wait(context.Background(), time.Second) }()
		synctest.Wait()

		start := time.Now()
		err := d.Wait(context.Background(), 100*time.Millisecond)

		require.ErrorIs(t, err, ErrBusy)
		assert.Zero(t, time.Since(start))
		require.NoError(t, <-done)
		assert.False(t, d.Busy())
	})
}

func TestWait_ReusableAfterCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := New()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		require.ErrorIs(t, d.Wait(ctx, time.Second), ErrCancelled)

		require.NoError(t, d.Wait(context.Background(), 10*time.Millisecond))
	})
}

func TestCancelledError_Message(t *testing.T) {
	assert.Equal(t, "delay: cancelled", (&CancelledError{}).Error())
	assert.Equal(t, "delay: cancelled: stop", (&CancelledError{Cause: errStop}).Error())
}
