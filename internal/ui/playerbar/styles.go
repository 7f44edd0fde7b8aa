package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/scoreplay/internal/ui/styles"
)

func barStyle(active bool) lipgloss.Style {
	return styles.T().PanelStyle(active)
}

func titleStyle() lipgloss.Style {
	return styles.T().S().Title
}

func infoStyle() lipgloss.Style {
	return styles.T().S().Muted
}

func timeStyle() lipgloss.Style {
	return styles.T().S().Base
}

func emptyStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

// filled renders n filled cells of a bar width cells wide.
func filled(n, width int) string {
	t := styles.T()
	return styles.GradientFill(filledBlock, n, width, t.Primary, t.Secondary)
}
