// internal/app/update.go
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/scoreplay/internal/errmsg"
	"github.com/llehouerou/scoreplay/internal/keymap"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case TickMsg:
		if m.Playing {
			return m, TickCmd()
		}
		return m, nil

	case PlayDoneMsg:
		m.Playing = false
		m.Cue = 0
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.ErrorMsg = errmsg.Format(errmsg.OpPlaybackStart, msg.Err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch m.Keys.Resolve(key) {
	case keymap.ActionQuit:
		m.Scheduler.Stop()
		if m.close != nil {
			if err := m.close(); err != nil {
				slog.Warn("close synthesizer", "err", err)
			}
		}
		return m, tea.Quit

	case keymap.ActionPlay:
		m.ErrorMsg = ""
		if m.Playing {
			m.Scheduler.SkipTo(0)
			return m, nil
		}
		if m.Cue > 0 {
			m.Scheduler.SkipTo(m.Cue)
		}
		m.Playing = true
		return m, tea.Batch(m.PlayCmd(), TickCmd())

	case keymap.ActionStop:
		m.Scheduler.Stop()
		m.Cue = 0
		return m, nil

	case keymap.ActionSeekForward:
		m.seek(m.Position() + m.SeekStep)
		return m, nil

	case keymap.ActionSeekBack:
		m.seek(max(m.Position()-m.SeekStep, 0))
		return m, nil

	case keymap.ActionSeekStart:
		m.seek(0)
		return m, nil

	case keymap.ActionHelp:
		m.ShowHelp = !m.ShowHelp
		return m, nil
	}
	return m, nil
}

// seek jumps the running scheduler or moves the idle cue.
func (m *Model) seek(target time.Duration) {
	if m.Playing {
		m.Scheduler.SkipTo(target)
		return
	}
	m.Cue = min(target, m.Scheduler.Duration())
}
