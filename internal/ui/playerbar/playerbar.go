package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/scoreplay/internal/icons"
	"github.com/llehouerou/scoreplay/internal/sequencer"
	"github.com/llehouerou/scoreplay/internal/ui/render"
)

// Height is the rendered height: top border, content, bottom border.
const Height = 3

// State holds everything needed to render the player bar.
type State struct {
	Status     sequencer.State
	Title      string
	Instrument string // instrument of the note under the cursor
	Note       string // name of the note under the cursor
	Position   time.Duration
	Duration   time.Duration
}

// Render returns the player bar for the given width.
//
// Layout: Title   piano · C4   ▶  0:01.2  ▓▓▓░░░  0:04.5
func Render(s State, width int) string {
	innerWidth := max(width-6, 0) // border and padding

	title := render.Sanitize(s.Title)
	if title == "" {
		title = "Untitled"
	}

	var info string
	if s.Status.IsActive() && s.Instrument != "" {
		info = icons.FormatTrack(render.Sanitize(s.Instrument))
		if s.Note != "" {
			info += " · " + render.Sanitize(s.Note)
		}
	}

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	minBarWidth := 24
	available := innerWidth - minBarWidth - sepWidth

	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)

	var left string
	switch {
	case info != "" && titleWidth+sepWidth+infoWidth <= available:
		left = titleStyle().Render(title) + separator + infoStyle().Render(info)
	case info != "" && titleWidth+sepWidth < available:
		left = titleStyle().Render(title) + separator +
			infoStyle().Render(truncate(info, available-titleWidth-sepWidth))
	default:
		left = titleStyle().Render(truncate(title, max(available, 10)))
	}

	barWidth := max(innerWidth-lipgloss.Width(left)-sepWidth, 0)
	bar := RenderProgressBar(s.Status, s.Position, s.Duration, barWidth)

	var content strings.Builder
	content.WriteString(left)
	content.WriteString(separator)
	content.WriteString(bar)

	return barStyle(s.Status.IsActive()).Padding(0, 2).Width(width - 2).Render(content.String())
}

func truncate(s string, maxWidth int) string {
	return render.Truncate(s, maxWidth)
}

// formatDuration renders d as m:ss.t.
func formatDuration(d time.Duration) string {
	d = max(d, 0)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	tenths := int(d.Milliseconds()/100) % 10
	return fmt.Sprintf("%d:%02d.%d", m, s, tenths)
}

func statusSymbol(st sequencer.State) string {
	switch st {
	case sequencer.StatePlaying:
		return icons.Play()
	case sequencer.StateSeeking:
		return icons.Seek()
	default:
		return icons.Stop()
	}
}
