// internal/ui/headerbar/headerbar.go
package headerbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/scoreplay/internal/ui/render"
	"github.com/llehouerou/scoreplay/internal/ui/styles"
)

// Height is the fixed height of the header bar (single line).
const Height = 1

const separator = " │ "

// Render returns the header line: the score title followed by one tab per
// track, the track at index current highlighted. current < 0 highlights
// nothing. Tabs that do not fit are elided with "…".
func Render(title string, tracks []string, current int, width int) string {
	if width < 20 {
		return ""
	}
	t := styles.T()
	title = render.Sanitize(title)
	if title == "" {
		title = "Untitled"
	}

	head := styles.ApplyBoldGradient(title, t.Primary, t.Secondary)
	sep := t.S().Subtle.Render(separator)

	var b strings.Builder
	b.WriteString(head)
	used := lipgloss.Width(head)
	sepWidth := lipgloss.Width(separator)

	for i, name := range tracks {
		style := t.S().Muted
		if i == current {
			style = t.S().Active
		}
		tab := style.Render(render.Sanitize(name))
		need := sepWidth + lipgloss.Width(tab)
		// Keep room for a trailing ellipsis unless this is the last tab.
		if used+need > width || (i < len(tracks)-1 && used+need+sepWidth+1 > width) {
			if used+sepWidth+1 <= width {
				b.WriteString(sep)
				b.WriteString(t.S().Subtle.Render("…"))
			}
			break
		}
		b.WriteString(sep)
		b.WriteString(tab)
		used += need
	}
	return b.String()
}
