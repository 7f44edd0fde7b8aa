// Package popup renders centered dialogs and composes them over a view.
package popup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/scoreplay/internal/ui/render"
	"github.com/llehouerou/scoreplay/internal/ui/styles"
)

// Style configures the popup appearance.
type Style struct {
	Border      lipgloss.Border
	BorderColor lipgloss.Color
	TitleStyle  lipgloss.Style
	FooterStyle lipgloss.Style
}

// DefaultStyle returns the default popup style.
func DefaultStyle() Style {
	t := styles.T()
	return Style{
		Border:      lipgloss.RoundedBorder(),
		BorderColor: t.BorderActive,
		TitleStyle:  t.S().Title,
		FooterStyle: t.S().Subtle,
	}
}

// Dialog is a centered popup with title, content, and footer.
type Dialog struct {
	Title   string
	Content string
	Footer  string
	Width   int // 0 = auto-fit content
	Style   Style
}

// New creates a new dialog with default style.
func New() *Dialog {
	return &Dialog{
		Style: DefaultStyle(),
	}
}

// Render returns the dialog centered in a termWidth x termHeight area.
func (p *Dialog) Render(termWidth, termHeight int) string {
	style := p.Style

	innerWidth := p.Width
	if innerWidth == 0 {
		innerWidth = max(maxLineWidth(p.Content), lipgloss.Width(p.Title), lipgloss.Width(p.Footer)) + 2
	}
	innerWidth = max(min(innerWidth, termWidth-4), 1)

	lines := make([]string, 0, strings.Count(p.Content, "\n")+5)
	if p.Title != "" {
		lines = append(lines, centerLine(style.TitleStyle.Render(p.Title), innerWidth), "")
	}
	for line := range strings.SplitSeq(p.Content, "\n") {
		if lipgloss.Width(line) > innerWidth {
			line = ansi.Truncate(line, innerWidth, "…")
		}
		lines = append(lines, render.Pad(line, innerWidth))
	}
	if p.Footer != "" {
		lines = append(lines, "", centerLine(style.FooterStyle.Render(p.Footer), innerWidth))
	}

	box := lipgloss.NewStyle().
		Border(style.Border).
		BorderForeground(style.BorderColor).
		Padding(0, 1).
		Width(innerWidth + 2).
		Render(strings.Join(lines, "\n"))

	return Center(box, termWidth, termHeight)
}

func maxLineWidth(s string) int {
	maxW := 0
	for line := range strings.SplitSeq(s, "\n") {
		maxW = max(maxW, lipgloss.Width(line))
	}
	return maxW
}

func centerLine(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	pad := (width - w) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-w-pad)
}

// Center pads pre-rendered content so it sits in the middle of the area.
func Center(box string, termWidth, termHeight int) string {
	lines := strings.Split(box, "\n")
	boxWidth := maxLineWidth(box)

	padTop := max((termHeight-len(lines))/2, 0)
	padLeft := max((termWidth-boxWidth)/2, 0)

	var result strings.Builder
	for range padTop {
		result.WriteString("\n")
	}
	for i, line := range lines {
		result.WriteString(strings.Repeat(" ", padLeft))
		result.WriteString(line)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// Compose overlays popupView on top of base. Lines of popupView that are
// visually blank leave base untouched; otherwise the visible span of the
// popup line replaces the same columns of base. ANSI sequences are kept.
func Compose(base, popupView string, width int) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(popupView, "\n")

	for len(baseLines) < len(overlayLines) {
		baseLines = append(baseLines, "")
	}

	for i, overlayLine := range overlayLines {
		plain := ansi.Strip(overlayLine)
		if strings.TrimSpace(plain) == "" {
			continue
		}

		startCol := len(plain) - len(strings.TrimLeft(plain, " "))
		endCol := ansi.StringWidth(strings.TrimRight(plain, " "))
		content := ansi.Cut(overlayLine, startCol, endCol)

		baseLine := baseLines[i]
		if w := ansi.StringWidth(baseLine); w < width {
			baseLine += strings.Repeat(" ", width-w)
		}

		// ansi.Cut can drop a wide rune straddling a boundary; pad to keep
		// columns aligned.
		prefix := ansi.Cut(baseLine, 0, startCol)
		if w := ansi.StringWidth(prefix); w < startCol {
			prefix += strings.Repeat(" ", startCol-w)
		}
		line := prefix + content
		if endCol < width {
			suffix := ansi.Cut(baseLine, endCol, width)
			if w := ansi.StringWidth(suffix); w < width-endCol {
				suffix = strings.Repeat(" ", width-endCol-w) + suffix
			}
			line += suffix
		}
		baseLines[i] = line
	}

	return strings.Join(baseLines, "\n")
}
