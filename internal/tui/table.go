package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/tabular"
	"github.com/theirongolddev/ledgr/internal/tui/components"
	"github.com/theirongolddev/ledgr/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// tableCard describes one table tab render.
type tableCard[T tabular.Record] struct {
	title    string
	view     tabular.View[T]
	state    tabular.State
	err      error
	cursor   int
	emptyMsg string
}

// renderTableCard renders a tabular view inside a content card with a row
// cursor, scrolled so the cursor stays visible.
func renderTableCard[T tabular.Record](tc tableCard[T], spin string, w, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	switch tc.state {
	case tabular.Loading:
		return components.ContentCard(tc.title, spin+muted.Render(" Loading..."), w)
	case tabular.Failed:
		return components.ContentCard(tc.title, warn.Render("⚠ "+tc.err.Error()), w)
	case tabular.Empty:
		msg := tc.emptyMsg
		if msg == "" {
			msg = tabular.EmptyMessage
		}
		return components.ContentCard(tc.title, muted.Render(msg), w)
	}

	innerW := components.CardInnerWidth(w)
	widths := columnWidths(tc.view, innerW)

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	hl := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	render := func(cells []string, style lipgloss.Style, aligns []tabular.Align) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			c = truncStr(c, widths[i])
			if aligns[i] == tabular.AlignRight {
				parts[i] = fmt.Sprintf("%*s", widths[i], c)
			} else {
				parts[i] = fmt.Sprintf("%-*s", widths[i], c)
			}
		}
		return style.Render(" " + strings.Join(parts, "  "))
	}

	var lines []string
	lines = append(lines, render(tc.view.Headers, header, tc.view.Aligns))
	lines = append(lines, dim.Render(strings.Repeat("─", innerW)))

	visible := h - 6 // border, title, header, rule, footer
	if visible < 1 {
		visible = 1
	}
	start := 0
	if tc.cursor >= visible {
		start = tc.cursor - visible + 1
	}
	end := start + visible
	if end > len(tc.view.Rows) {
		end = len(tc.view.Rows)
	}

	for i := start; i < end; i++ {
		style := cell
		if i == tc.cursor {
			style = hl
		}
		lines = append(lines, render(tc.view.Rows[i].Cells, style, tc.view.Aligns))
	}
	lines = append(lines, dim.Render(cli.FormatRowCount(len(tc.view.Rows))))

	return components.ContentCard(tc.title, strings.Join(lines, "\n"), w)
}

// columnWidths sizes each column to its widest cell, shrinking the first
// column when the table is wider than the card.
func columnWidths[T tabular.Record](v tabular.View[T], innerW int) []int {
	widths := make([]int, len(v.Headers))
	for i, h := range v.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range v.Rows {
		for i, c := range r.Cells {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	total := 1 + 2*(len(widths)-1)
	for _, w := range widths {
		total += w
	}
	if over := total - innerW; over > 0 && len(widths) > 0 {
		widths[0] -= over
		if widths[0] < 4 {
			widths[0] = 4
		}
	}
	return widths
}
