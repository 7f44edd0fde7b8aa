package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/scoreplay/internal/sequencer"
)

var (
	filledBlock = "▓"
	emptyBlock  = "░"
)

// RenderProgressBar renders a block-style progress bar.
// Format: ▶  0:01.2  ▓▓▓▓▓░░░░░  0:04.5
func RenderProgressBar(status sequencer.State, position, duration time.Duration, width int) string {
	symbol := statusSymbol(status)
	posStr := formatDuration(position)
	durStr := formatDuration(duration)

	fixedWidth := lipgloss.Width(symbol) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth

	if barWidth < 3 {
		// Too narrow for bar, just show times
		return symbol + "  " + posStr + " / " + durStr
	}

	var ratio float64
	if duration > 0 {
		ratio = float64(position) / float64(duration)
	}
	n := max(min(int(float64(barWidth)*ratio), barWidth), 0)

	bar := filled(n, barWidth) +
		emptyStyle().Render(strings.Repeat(emptyBlock, barWidth-n))

	return symbol + "  " + timeStyle().Render(posStr) + "  " + bar + "  " + timeStyle().Render(durStr)
}
