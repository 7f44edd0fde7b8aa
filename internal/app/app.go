// internal/app/app.go
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/scoreplay/internal/keymap"
	"github.com/llehouerou/scoreplay/internal/score"
	"github.com/llehouerou/scoreplay/internal/sequencer"
)

// DefaultSeekStep is used when New is given a non-positive step.
const DefaultSeekStep = time.Second

// Model is the root TUI model: one score, one scheduler.
type Model struct {
	Scheduler *sequencer.Scheduler
	Score     *score.Score
	Keys      *keymap.Resolver
	SeekStep  time.Duration
	Cue       time.Duration // seek target chosen while idle, applied on next play
	Playing   bool          // a Play command is in flight
	ShowHelp  bool
	ErrorMsg  string
	Width     int
	Height    int

	ctx   context.Context
	index *score.Index
	help  help.Model
	close func() error
}

// New creates the model. closeFn releases the synthesizer on quit and may
// be nil.
func New(
	ctx context.Context,
	sched *sequencer.Scheduler,
	sc *score.Score,
	seekStep time.Duration,
	closeFn func() error,
) Model {
	if seekStep <= 0 {
		seekStep = DefaultSeekStep
	}
	return Model{
		Scheduler: sched,
		Score:     sc,
		Keys:      keymap.NewResolver(keymap.All),
		SeekStep:  seekStep,
		ctx:       ctx,
		index:     score.NewIndex(sc.Tracks),
		help:      help.New(),
		close:     closeFn,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Position is the scheduler position while playing, otherwise the cue.
func (m Model) Position() time.Duration {
	if m.Playing {
		return m.Scheduler.Position()
	}
	return m.Cue
}
