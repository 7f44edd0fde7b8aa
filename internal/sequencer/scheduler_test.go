package sequencer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/scoreplay/internal/delay"
	"github.com/llehouerou/scoreplay/internal/logging"
	"github.com/llehouerou/scoreplay/internal/score"
	"github.com/llehouerou/scoreplay/internal/synth"
)

const ms = time.Millisecond

func note(name string, d int) score.Note {
	return score.Note{Name: name, Velocity: 100, Duration: time.Duration(d) * ms}
}

// pianoScore is one piano track of three 500ms notes: C4, D4, E4.
func pianoScore() []score.Track {
	return []score.Track{{
		Instrument: "piano",
		Notes:      []score.Note{note("C4", 500), note("D4", 500), note("E4", 500)},
	}}
}

func newTestScheduler(m *synth.Mock, tracks []score.Track, opts ...Option) *Scheduler {
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(m, tracks, opts...)
}

func startPlay(ctx context.Context, s *Scheduler) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Play(ctx) }()
	return done
}

func TestPlay_SoundsEveryNoteInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		tracks := []score.Track{
			{Instrument: "piano", Notes: []score.Note{note("C4", 500), note("D4", 500)}},
			{Instrument: "violin", Notes: []score.Note{note("G4", 250)}},
		}
		s := newTestScheduler(m, tracks)
		start := time.Now()

		require.NoError(t, s.Play(context.Background()))

		assert.Equal(t, 1250*ms, time.Since(start))
		assert.Equal(t, []string{"C4", "D4", "G4"}, m.Played())
		assert.Equal(t, []string{"piano", "violin"}, m.Acquired())
		assert.Equal(t, []synth.Event{
			{Kind: synth.EventPlay, Instrument: "piano", Name: "C4", Velocity: 100},
			{Kind: synth.EventStop, Instrument: "piano"},
			{Kind: synth.EventPlay, Instrument: "piano", Name: "D4", Velocity: 100},
			{Kind: synth.EventStop, Instrument: "piano"},
			{Kind: synth.EventPlay, Instrument: "violin", Name: "G4", Velocity: 100},
			{Kind: synth.EventStop, Instrument: "violin"},
		}, m.Events())
		assert.Zero(t, s.Position())
		assert.Equal(t, StateIdle, s.State())
	})
}

func TestPlay_PositionTracksWallClock(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		assert.Zero(t, s.Position())

		done := startPlay(context.Background(), s)
		time.Sleep(300 * ms)

		assert.Equal(t, 300*ms, s.Position())
		assert.Equal(t, StatePlaying, s.State())
		assert.True(t, s.IsPlaying())

		require.NoError(t, <-done)
		assert.Zero(t, s.Position())
		assert.False(t, s.IsPlaying())
	})
}

func TestPlay_PositionRestartsOnEachPlay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		require.NoError(t, s.Play(context.Background()))

		done := startPlay(context.Background(), s)
		time.Sleep(200 * ms)
		assert.Equal(t, 200*ms, s.Position())

		require.NoError(t, <-done)
	})
}

func TestPlay_EmptyScore(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, []score.Track{{Instrument: "piano"}})

		require.NoError(t, s.Play(context.Background()))
		assert.Empty(t, m.Played())
		assert.Equal(t, []string{"piano"}, m.Acquired())
	})
}

func TestPlay_AlreadyPlaying(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		done := startPlay(context.Background(), s)
		synctest.Wait()

		require.ErrorIs(t, s.Play(context.Background()), ErrAlreadyPlaying)

		s.Stop()
		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4"}, m.Played())
	})
}

func TestSkipTo_JumpsIntoCoveringNote(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		start := time.Now()
		done := startPlay(context.Background(), s)

		time.Sleep(100 * ms)
		s.SkipTo(600 * ms)
		synctest.Wait()

		// C4 is skipped on the restart, D4 sounds from the target.
		assert.Equal(t, []string{"C4", "D4"}, m.Played())
		assert.Equal(t, 600*ms+DefaultSeekBuffer, s.Position())
		assert.Equal(t, StatePlaying, s.State())

		time.Sleep(100 * ms)
		assert.Equal(t, 700*ms+DefaultSeekBuffer, s.Position())

		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4", "D4", "E4"}, m.Played())
		// 100ms of C4, the remaining 350ms of D4, then E4.
		assert.Equal(t, 950*ms, time.Since(start))
		assert.Zero(t, s.Position())
	})
}

func TestSkipTo_PositionContinuousAfterSeek(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore(), WithSeekBuffer(0))
		done := startPlay(context.Background(), s)

		time.Sleep(250 * ms)
		s.SkipTo(1200 * ms)
		synctest.Wait()
		seekAt := time.Now()

		for range 3 {
			time.Sleep(70 * ms)
			assert.Equal(t, 1200*ms, s.Position()-time.Since(seekAt))
		}

		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4", "E4"}, m.Played())
	})
}

func TestSkipTo_Backward(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		start := time.Now()
		done := startPlay(context.Background(), s)

		time.Sleep(1200 * ms)
		s.SkipTo(0)
		synctest.Wait()

		assert.Equal(t, []string{"C4", "D4", "E4", "C4"}, m.Played())
		assert.Equal(t, DefaultSeekBuffer, s.Position())

		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4", "D4", "E4", "C4", "D4", "E4"}, m.Played())
		assert.Equal(t, 1200*ms+450*ms+1000*ms, time.Since(start))
	})
}

func TestSkipTo_NegativeTargetClampedToStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore(), WithSeekBuffer(0))
		done := startPlay(context.Background(), s)

		time.Sleep(700 * ms)
		s.SkipTo(-time.Second)
		synctest.Wait()

		assert.Equal(t, []string{"C4", "D4", "C4"}, m.Played())
		assert.Zero(t, s.Position())

		s.Stop()
		require.NoError(t, <-done)
	})
}

func TestSkipTo_BeyondEndFinishesWithoutError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		start := time.Now()
		done := startPlay(context.Background(), s)

		time.Sleep(100 * ms)
		s.SkipTo(10 * time.Second)

		require.NoError(t, <-done)
		assert.Equal(t, 100*ms, time.Since(start))
		assert.Equal(t, []string{"C4"}, m.Played())
		assert.Zero(t, s.Position())
		assert.Equal(t, StateIdle, s.State())
	})
}

func TestSkipTo_WhileIdleAppliesToNextPlay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())

		s.SkipTo(600 * ms)
		assert.Zero(t, s.Position())
		assert.Empty(t, m.Played())

		start := time.Now()
		done := startPlay(context.Background(), s)
		synctest.Wait()
		assert.Equal(t, 600*ms+DefaultSeekBuffer, s.Position())

		require.NoError(t, <-done)
		assert.Equal(t, []string{"D4", "E4"}, m.Played())
		assert.Equal(t, 850*ms, time.Since(start))
	})
}

func TestSkipTo_RequestedAsNoteEndsNaturally(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())

		// The seek lands after C4's wait has already expired, so no
		// cancellation is observed by the delay. The loop must still pick
		// the request up before sounding D4.
		first := true
		m.OnStop(func(synth.Event) {
			if first {
				first = false
				s.SkipTo(1100 * ms)
			}
		})

		start := time.Now()
		require.NoError(t, s.Play(context.Background()))

		assert.Equal(t, []string{"C4", "E4"}, m.Played())
		assert.Equal(t, 500*ms+350*ms, time.Since(start))
	})
}

func TestSkipTo_TargetOnNoteBoundary(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore(), WithSeekBuffer(0))
		start := time.Now()
		done := startPlay(context.Background(), s)

		time.Sleep(100 * ms)
		s.SkipTo(500 * ms)
		synctest.Wait()

		// C4 ends exactly on the target, so D4 is the first note sounded.
		assert.Equal(t, []string{"C4", "D4"}, m.Played())
		assert.Equal(t, 500*ms, s.Position())

		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4", "D4", "E4"}, m.Played())
		assert.Equal(t, 100*ms+1000*ms, time.Since(start))
	})
}

func TestSkipTo_TargetAtEndOfScore(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore(), WithSeekBuffer(0))
		start := time.Now()
		done := startPlay(context.Background(), s)

		time.Sleep(100 * ms)
		s.SkipTo(1500 * ms)

		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4"}, m.Played())
		assert.Equal(t, 100*ms, time.Since(start))
	})
}

func TestSkipTo_RequestedAsLastNoteEnds(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())

		// The request arrives once E4's wait has expired and there is no
		// next note to pick it up.
		stops := 0
		m.OnStop(func(synth.Event) {
			stops++
			if stops == 3 {
				s.SkipTo(0)
			}
		})

		start := time.Now()
		require.NoError(t, s.Play(context.Background()))

		assert.Equal(t, []string{"C4", "D4", "E4", "C4", "D4", "E4"}, m.Played())
		assert.Equal(t, 1500*ms+1500*ms-DefaultSeekBuffer, time.Since(start))

		// The request was consumed by the restart.
		require.NoError(t, s.Play(context.Background()))
		assert.Len(t, m.Played(), 9)
	})
}

func TestSkipTo_LogsDelayAndClockState(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var buf bytes.Buffer
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore(),
			WithLogger(logging.New(&buf, slog.LevelDebug)))
		done := startPlay(context.Background(), s)

		time.Sleep(100 * ms)
		s.SkipTo(600 * ms)
		s.Stop()
		require.NoError(t, <-done)

		out := buf.String()
		assert.Contains(t, out, "msg=\"seek requested\"")
		assert.Contains(t, out, "delay_busy=true")
		assert.Contains(t, out, "clock_ms=100")
	})
}

func TestSkipTo_LatestRequestWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore(), WithSeekBuffer(0))
		done := startPlay(context.Background(), s)

		time.Sleep(100 * ms)
		s.SkipTo(1100 * ms)
		s.SkipTo(600 * ms)
		synctest.Wait()

		assert.Equal(t, 600*ms, s.Position())
		s.Stop()
		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4", "D4"}, m.Played())
	})
}

func TestStop_WhileNotePending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		start := time.Now()
		done := startPlay(context.Background(), s)

		time.Sleep(700 * ms)
		s.Stop()

		require.NoError(t, <-done)
		assert.Equal(t, 700*ms, time.Since(start))
		assert.Equal(t, []string{"C4", "D4"}, m.Played())
		events := m.Events()
		assert.Equal(t, synth.EventStop, events[len(events)-1].Kind)
		assert.Zero(t, s.Position())
		assert.Equal(t, StateIdle, s.State())
	})
}

func TestStop_WhenIdleIsNoop(t *testing.T) {
	m := synth.NewMock()
	s := newTestScheduler(m, pianoScore())
	s.Stop()
	assert.Equal(t, StateIdle, s.State())
}

func TestStop_ThenSkipToDefersSeek(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		done := startPlay(context.Background(), s)

		time.Sleep(100 * ms)
		s.Stop()
		s.SkipTo(1100 * ms)
		require.NoError(t, <-done)
		assert.Equal(t, []string{"C4"}, m.Played())

		require.NoError(t, s.Play(context.Background()))
		assert.Equal(t, []string{"C4", "E4"}, m.Played())
	})
}

func TestPlay_ChannelCancelCallbackStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		start := time.Now()
		done := startPlay(context.Background(), s)

		time.Sleep(200 * ms)
		m.Close()

		require.NoError(t, <-done)
		assert.Equal(t, 200*ms, time.Since(start))
		assert.Equal(t, []string{"C4"}, m.Played())
		assert.Equal(t, StateIdle, s.State())
	})
}

func TestPlay_ChannelSignalledStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		m.SignalStopOn("D4")
		s := newTestScheduler(m, pianoScore())
		start := time.Now()

		require.NoError(t, s.Play(context.Background()))

		assert.Equal(t, 500*ms, time.Since(start))
		assert.Equal(t, []string{"C4", "D4"}, m.Played())
		events := m.Events()
		assert.Equal(t, synth.Event{Kind: synth.EventStop, Instrument: "piano"}, events[len(events)-1])
	})
}

func TestPlay_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := synth.NewMock()
		s := newTestScheduler(m, pianoScore())
		ctx, cancel := context.WithCancel(context.Background())
		done := startPlay(ctx, s)

		time.Sleep(100 * ms)
		cancel()

		require.ErrorIs(t, <-done, context.Canceled)
		assert.Equal(t, []string{"C4"}, m.Played())
		assert.Equal(t, StateIdle, s.State())
	})
}

func TestPlay_ChannelErrorPropagates(t *testing.T) {
	m := synth.NewMock()
	boom := errors.New("no such instrument")
	m.SetChannelError("piano", boom)
	s := newTestScheduler(m, pianoScore())

	err := s.Play(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Empty(t, m.Played())
	assert.Equal(t, StateIdle, s.State())
}

func TestPlay_PlayNoteErrorPropagates(t *testing.T) {
	m := synth.NewMock()
	boom := errors.New("port closed")
	m.SetPlayError(boom)
	s := newTestScheduler(m, pianoScore())

	err := s.Play(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateIdle, s.State())
}

func TestPlay_SharedDelayRejectsOverlap(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		shared := delay.New()
		m1, m2 := synth.NewMock(), synth.NewMock()
		s1 := newTestScheduler(m1, pianoScore(), WithDelay(shared))
		s2 := newTestScheduler(m2, pianoScore(), WithDelay(shared))

		done := startPlay(context.Background(), s1)
		synctest.Wait()

		err := s2.Play(context.Background())
		require.ErrorIs(t, err, delay.ErrBusy)
		assert.Equal(t, []string{"C4"}, m2.Played())
		assert.Equal(t, StateIdle, s2.State())

		s1.Stop()
		require.NoError(t, <-done)
	})
}

func TestPlay_PrivateDelaysRunConcurrently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m1, m2 := synth.NewMock(), synth.NewMock()
		s1 := newTestScheduler(m1, pianoScore())
		s2 := newTestScheduler(m2, pianoScore())

		d1 := startPlay(context.Background(), s1)
		d2 := startPlay(context.Background(), s2)

		require.NoError(t, <-d1)
		require.NoError(t, <-d2)
		assert.Len(t, m1.Played(), 3)
		assert.Len(t, m2.Played(), 3)
	})
}

func TestPlayNote_CancelledContextSoundsNothing(t *testing.T) {
	m := synth.NewMock()
	s := newTestScheduler(m, pianoScore())
	ch, err := m.Channel("piano")
	require.NoError(t, err)

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(&SeekRequest{Target: 600 * ms})

	done, err := s.playNote(ctx, ch, "piano", note("C4", 500), 500*ms, cancel)

	assert.False(t, done)
	require.ErrorIs(t, err, delay.ErrCancelled)
	var seek *SeekRequest
	require.ErrorAs(t, err, &seek)
	assert.Equal(t, 600*ms, seek.Target)
	assert.Empty(t, m.Events())
	assert.False(t, s.delay.Busy())
}

func TestDuration(t *testing.T) {
	s := newTestScheduler(synth.NewMock(), pianoScore())
	assert.Equal(t, 1500*ms, s.Duration())
}
