package components

import (
	"strings"

	"github.com/theirongolddev/ledgr/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the status bar reports on its right side.
type StatusInfo struct {
	DataAge     string // e.g. "2m ago"; empty hides it
	Refreshing  bool
	AutoRefresh bool
	Stale       bool
	Notice      string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	bg := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	hint := func(key, label string) string {
		return keyStyle.Render("["+key+"]") + textStyle.Render(label)
	}
	left := bg.Render(" ") + strings.Join([]string{
		hint("?", "help"),
		hint("n", "ew"),
		hint("r", "efresh"),
		hint("q", "uit"),
	}, bg.Render("  "))

	var right []string
	if info.Notice != "" {
		right = append(right, okStyle.Render(info.Notice))
	}
	if info.Stale {
		right = append(right, warnStyle.Render("STALE"))
	}
	switch {
	case info.Refreshing:
		right = append(right, keyStyle.Render("↻ refreshing"))
	case info.AutoRefresh:
		right = append(right, textStyle.Render("↻ auto"))
	}
	if info.DataAge != "" {
		right = append(right, textStyle.Render("updated "+info.DataAge))
	}
	rightStr := strings.Join(right, bg.Render("  ")) + bg.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(left + bg.Render(strings.Repeat(" ", padding)) + rightStr)
}
