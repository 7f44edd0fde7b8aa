// internal/app/view.go
package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/scoreplay/internal/sequencer"
	"github.com/llehouerou/scoreplay/internal/ui/headerbar"
	"github.com/llehouerou/scoreplay/internal/ui/playerbar"
	"github.com/llehouerou/scoreplay/internal/ui/popup"
	"github.com/llehouerou/scoreplay/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	width := m.Width
	if width <= 0 {
		width = 80
	}

	st, track := m.playerState()
	names := make([]string, 0, len(m.Score.Tracks))
	for _, t := range m.Score.Tracks {
		names = append(names, t.Instrument)
	}

	var b strings.Builder
	b.WriteString(headerbar.Render(m.Score.Title, names, track, width))
	b.WriteString("\n")

	b.WriteString(playerbar.Render(st, width))
	b.WriteString("\n")

	b.WriteString(m.help.ShortHelpView(m.Keys.ShortHelp()))
	b.WriteString("\n")

	if m.ErrorMsg != "" {
		b.WriteString(styles.T().S().Error.Render(m.ErrorMsg))
		b.WriteString("\n")
	}

	view := b.String()
	if m.ShowHelp {
		d := popup.New()
		d.Title = "Keys"
		d.Content = m.help.FullHelpView(m.Keys.FullHelp())
		d.Footer = "? to close"
		height := max(m.Height, lipgloss.Height(view))
		view = popup.Compose(view, d.Render(width, height), width)
	}
	return view
}

// playerState returns the bar state and the index of the track under the
// cursor, -1 when idle.
func (m Model) playerState() (playerbar.State, int) {
	status := sequencer.StateIdle
	if m.Playing {
		status = m.Scheduler.State()
	}
	pos := m.Position()
	st := playerbar.State{
		Status:   status,
		Title:    m.Score.Title,
		Position: pos,
		Duration: m.Scheduler.Duration(),
	}
	track := -1
	if c, ok := m.index.Locate(pos); ok && status.IsActive() {
		t := m.Score.Tracks[c.Track]
		st.Instrument = t.Instrument
		st.Note = t.Notes[c.Note].Name
		track = c.Track
	}
	return st, track
}
