package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ledgr/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// ColorForRatio returns green/yellow/orange/red as spending approaches income.
func ColorForRatio(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Red
	case pct >= 0.8:
		return t.Orange
	case pct >= 0.5:
		return t.Yellow
	default:
		return t.Green
	}
}

// RatioBar renders a bar for pct (expense / income) followed by the percentage.
// pct above 1 fills the bar and keeps the real number in the label.
func RatioBar(pct float64, width int) string {
	t := theme.Active
	if width < 1 {
		width = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	color := ColorForRatio(pct)
	filledStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		space + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}
