// internal/app/commands.go
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickInterval matches the tenth-of-a-second resolution of the readout.
const tickInterval = 100 * time.Millisecond

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// PlayCmd runs the scheduler until it stops, finishes or fails.
func (m Model) PlayCmd() tea.Cmd {
	sched, ctx := m.Scheduler, m.ctx
	return func() tea.Msg {
		return PlayDoneMsg{Err: sched.Play(ctx)}
	}
}
