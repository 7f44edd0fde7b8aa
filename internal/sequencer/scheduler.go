// Package sequencer plays tracks of notes through a synthesizer, one note
// at a time, with stop and seek support.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/scoreplay/internal/clock"
	"github.com/llehouerou/scoreplay/internal/delay"
	"github.com/llehouerou/scoreplay/internal/score"
	"github.com/llehouerou/scoreplay/internal/synth"
)

// Scheduler sequences a fixed set of tracks. Play runs the note loop;
// SkipTo, Stop and Position may be called from other goroutines while it
// runs.
type Scheduler struct {
	synth      synth.Synthesizer
	tracks     []score.Track
	clock      *clock.Stopwatch
	delay      *delay.Delay
	seekBuffer time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	running bool           // a Play call owns the loop
	playing bool           // cleared by stops before the loop unwinds
	seeking bool           // fast-forwarding to a seek target
	pending *time.Duration // seek target waiting for the next restart
	offset  time.Duration  // position = clock + offset
	cancel  context.CancelCauseFunc
}

// New creates a scheduler for tracks. The clock starts now.
func New(s synth.Synthesizer, tracks []score.Track, opts ...Option) *Scheduler {
	sch := &Scheduler{
		synth:      s,
		tracks:     tracks,
		clock:      clock.New(),
		delay:      delay.New(),
		seekBuffer: DefaultSeekBuffer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(sch)
	}
	return sch
}

// State returns the current playback state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.playing:
		return StateIdle
	case s.seeking:
		return StateSeeking
	default:
		return StatePlaying
	}
}

// IsPlaying reports whether playback is in progress.
func (s *Scheduler) IsPlaying() bool {
	return s.State().IsActive()
}

// Duration returns the virtual length of the score.
func (s *Scheduler) Duration() time.Duration {
	return score.Total(s.tracks)
}

// Position returns the current virtual position, or 0 when idle.
// Position is measured from the start of the current Play, not from New:
// a fresh Play reads 0 and a landed seek reads its target.
func (s *Scheduler) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return 0
	}
	return s.clock.Elapsed() + s.offset
}

// SkipTo requests a jump to ts. It returns once the request is recorded;
// the loop restarts from the top of the score and resumes sounding at the
// note covering ts plus the seek buffer.
//
// When nothing is playing the target is kept and the next Play starts
// from it.
func (s *Scheduler) SkipTo(ts time.Duration) {
	target := max(ts, 0) + s.seekBuffer

	s.mu.Lock()
	s.pending = &target
	cancel := s.cancel
	playing := s.playing
	s.mu.Unlock()

	s.logger.Debug("seek requested",
		"target", target,
		"playing", playing,
		"delay_busy", s.delay.Busy(),
		"clock_ms", s.clock.Millis(),
	)
	if cancel != nil {
		cancel(&SeekRequest{Target: target})
	}
}

// Stop ends playback. The running Play returns nil once its current note
// is silenced. Stop is a no-op when idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	cancel := s.cancel
	s.mu.Unlock()

	s.logger.Debug("stop requested")
	if cancel != nil {
		cancel(ErrStopRequested)
	}
}

// Play sounds every note of every track in order and blocks until the score
// ends, playback is stopped, ctx is done or an error occurs. One channel is
// acquired per track for the duration of the call.
//
// Stops return nil. A done ctx returns ctx.Err(). Synthesizer errors and
// delay.ErrBusy are returned as they occur.
func (s *Scheduler) Play(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyPlaying
	}
	s.running = true
	s.playing = true
	s.offset = -s.clock.Elapsed()
	s.mu.Unlock()
	defer s.finish()

	channels := make([]synth.Channel, len(s.tracks))
	for i, t := range s.tracks {
		ch, err := s.synth.Channel(t.Instrument)
		if err != nil {
			return fmt.Errorf("get channel for %q: %w", t.Instrument, err)
		}
		channels[i] = ch
	}

	s.logger.Info("playback started", "tracks", len(s.tracks), "duration", s.Duration())
	for {
		restart, err := s.run(ctx, channels)
		if err != nil {
			s.logger.Error("playback failed", "err", err)
			return err
		}
		if !restart {
			return nil
		}
	}
}

func (s *Scheduler) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.playing = false
	s.seeking = false
	s.cancel = nil
}

// interruption is what the loop found when it checked for stop and seek
// requests between notes.
type interruption int

const (
	none interruption = iota
	stopped
	restart
)

// interruptedLocked must be called with s.mu held.
func (s *Scheduler) interruptedLocked() interruption {
	switch {
	case !s.playing:
		return stopped
	case s.pending != nil:
		return restart
	default:
		return none
	}
}

// run makes one pass over the score. It reports whether the pass ended
// because of a seek, in which case the caller starts a new pass.
func (s *Scheduler) run(ctx context.Context, channels []synth.Channel) (bool, error) {
	s.mu.Lock()
	var target time.Duration
	if s.pending != nil {
		target = *s.pending
		s.pending = nil
		s.seeking = true
	}
	seeking := s.seeking
	s.mu.Unlock()

	if seeking {
		s.logger.Debug("seeking", "target", target)
	}

	var virtual time.Duration
	for ti, t := range s.tracks {
		ch := channels[ti]
		for _, n := range t.Notes {
			if err := ctx.Err(); err != nil {
				return false, err
			}

			dur := n.Duration
			if seeking {
				s.mu.Lock()
				in := s.interruptedLocked()
				s.mu.Unlock()
				if in != none {
					return in == restart, nil
				}
				// A note ending exactly on the target is behind it.
				if end := virtual + dur; end < target || (dur > 0 && end == target) {
					virtual = end
					continue
				}
				// Sound the rest of the note covering the target.
				dur = virtual + dur - target
				virtual = target
				seeking = false
				s.landSeek(virtual)
			}

			noteCtx, cancel := context.WithCancelCause(ctx)
			s.mu.Lock()
			in := s.interruptedLocked()
			if in == none {
				s.cancel = cancel
			}
			s.mu.Unlock()
			if in != none {
				cancel(nil)
				return in == restart, nil
			}

			done, err := s.playNote(noteCtx, ch, t.Instrument, n, dur, cancel)
			s.mu.Lock()
			s.cancel = nil
			s.mu.Unlock()
			cancel(nil)

			switch {
			case err == nil && done:
				virtual += dur
			case err == nil:
				return false, nil
			case errors.As(err, new(*SeekRequest)):
				s.logger.Debug("note interrupted by seek", "note", n.Name, "at", virtual)
				return true, nil
			case errors.Is(err, ErrStopRequested):
				s.logger.Info("playback stopped", "at", virtual)
				s.markStopped()
				return false, nil
			case errors.Is(err, delay.ErrCancelled) && ctx.Err() != nil:
				return false, ctx.Err()
			default:
				return false, err
			}
		}
	}

	// A seek recorded after the last wait expired still restarts the pass.
	s.mu.Lock()
	in := s.interruptedLocked()
	s.mu.Unlock()
	if in == restart {
		s.logger.Debug("seek requested at end of score")
		return true, nil
	}

	if seeking {
		s.logger.Info("seek target beyond end of score", "target", target, "duration", virtual)
	} else {
		s.logger.Info("playback finished", "duration", virtual)
	}
	return false, nil
}

// playNote sounds n on ch and waits dur. It returns done=false with a nil
// error when the channel signalled a stop right after the note started, and
// a *delay.CancelledError when ctx was done before the note started or
// while it was held. Nothing is sounded in the former case.
func (s *Scheduler) playNote(
	ctx context.Context,
	ch synth.Channel,
	instrument string,
	n score.Note,
	dur time.Duration,
	cancel context.CancelCauseFunc,
) (bool, error) {
	if ctx.Err() != nil {
		return false, &delay.CancelledError{Cause: context.Cause(ctx)}
	}

	onCancel := func() { cancel(ErrStopRequested) }
	if err := ch.PlayNote(n.Name, n.Velocity, onCancel); err != nil {
		return false, fmt.Errorf("play note %q on %q: %w", n.Name, instrument, err)
	}

	if ch.DidSignalStop() {
		s.logger.Info("channel signalled stop", "instrument", instrument)
		s.markStopped()
		if err := ch.StopNote(); err != nil {
			return false, fmt.Errorf("stop note %q on %q: %w", n.Name, instrument, err)
		}
		return false, nil
	}

	waitErr := s.delay.Wait(ctx, dur)
	if err := ch.StopNote(); err != nil {
		return false, fmt.Errorf("stop note %q on %q: %w", n.Name, instrument, err)
	}
	if waitErr != nil {
		return false, waitErr
	}
	return true, nil
}

// landSeek aligns the clock offset so Position reports virtual from now on.
func (s *Scheduler) landSeek(virtual time.Duration) {
	s.mu.Lock()
	s.offset = virtual - s.clock.Elapsed()
	s.seeking = false
	s.mu.Unlock()
	s.logger.Debug("seek landed", "at", virtual)
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}
