package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/tabular"
	"github.com/theirongolddev/ledgr/internal/tui/theme"
)

// Styles are built from the active theme at render time, so a theme chosen
// in config applies to CLI output too.
func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Active.TextPrimary).Align(lipgloss.Center)
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Active.Accent)
}

func valueStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(theme.Active.TextPrimary) }
func mutedStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(theme.Active.TextMuted) }
func dimStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(theme.Active.TextDim) }
func incomeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Active.Green)
}
func expenseStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Active.Red)
}
func warnStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(theme.Active.Orange) }

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int           // optional column widths, auto-calculated if nil
	Aligns  []tabular.Align // optional; default is first column left, others right
	Footer  string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle().Render(title))
}

// RenderView renders a tabular view as a bordered table with a row count
// footer. An empty view renders emptyMsg instead.
func RenderView[T tabular.Record](title string, v tabular.View[T], emptyMsg string) string {
	if len(v.Rows) == 0 {
		if emptyMsg == "" {
			emptyMsg = tabular.EmptyMessage
		}
		return "  " + mutedStyle().Render(emptyMsg) + "\n"
	}

	rows := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = r.Cells
	}
	return RenderTable(Table{
		Title:   title,
		Headers: v.Headers,
		Rows:    rows,
		Aligns:  v.Aligns,
		Footer:  FormatRowCount(len(v.Rows)),
	})
}

// RenderError renders a one-line error banner.
func RenderError(err error) string {
	return warnStyle().Render("  ! "+err.Error()) + "\n"
}

// RenderDayHeader renders a day's date with its income and expense totals.
func RenderDayHeader(g model.DayGroup, fallbackCurrency string) string {
	cur := g.Currency(fallbackCurrency)
	date := lipgloss.NewStyle().Bold(true).Foreground(theme.Active.TextPrimary).Render(FormatDayNumber(g.Date)) +
		" " + mutedStyle().Render(FormatMonthYear(g.Date)+" "+FormatDayOfWeek(g.Date))
	totals := mutedStyle().Render("Income: ") + incomeStyle().Render(FormatIncome(cur, g.TotalIncome)) +
		"   " + mutedStyle().Render("Expense: ") + expenseStyle().Render(FormatExpense(cur, g.TotalExpense))
	return "  " + date + "   " + totals
}

// AmountStyle returns the income or expense style for a transaction type.
func AmountStyle(typ model.TxType) lipgloss.Style {
	if typ == model.Income {
		return incomeStyle()
	}
	return expenseStyle()
}

// RenderDetail renders the full transaction detail block.
func RenderDetail(tx model.Transaction, fallbackCurrency string) string {
	label := func(s string) string { return mutedStyle().Render(fmt.Sprintf("  %-14s", s)) }

	var b strings.Builder
	b.WriteString(RenderTitle("Transaction Details"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s%s\n", label("Description"), valueStyle().Render(tx.Description))
	fmt.Fprintf(&b, "%s%s\n", label("Amount"), AmountStyle(tx.Type).Render(FormatSigned(tx, fallbackCurrency)))
	fmt.Fprintf(&b, "%s%s\n", label("Type"), valueStyle().Render(tx.Type.Label()))
	fmt.Fprintf(&b, "%s%s\n", label("Category"), valueStyle().Render(tx.Category.Name))
	fmt.Fprintf(&b, "%s%s\n", label("Account"), valueStyle().Render(tx.Account.Name))
	fmt.Fprintf(&b, "%s%s\n", label("Date"), valueStyle().Render(
		FormatLongDate(tx.Date())+" "+model.FormatClock(tx.Timestamp.Time)))
	fmt.Fprintf(&b, "%s%s\n", label("Transaction ID"), dimStyle().Render(tx.ID))
	return b.String()
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	// Calculate column widths
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	rightAligned := func(i int) bool {
		if t.Aligns == nil {
			return i > 0
		}
		return i < len(t.Aligns) && t.Aligns[i] == tabular.AlignRight
	}

	dim := dimStyle()

	var b strings.Builder
	border := func(left, mid, right string) {
		b.WriteString(dim.Render(left))
		for i, w := range widths {
			b.WriteString(dim.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dim.Render(mid))
			}
		}
		b.WriteString(dim.Render(right))
		b.WriteString("\n")
	}

	// Title above table if present
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle().Render(t.Title))
		b.WriteString("\n")
	}

	border("╭", "┬", "╮")

	// Header row
	if len(t.Headers) > 0 {
		b.WriteString(dim.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle().Render(pad(h, widths[i], rightAligned(i))))
			if i < numCols-1 {
				b.WriteString(dim.Render("│"))
			}
		}
		b.WriteString(dim.Render("│"))
		b.WriteString("\n")
		border("├", "┼", "┤")
	}

	// Data rows
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			border("├", "┼", "┤")
			continue
		}

		b.WriteString(dim.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle().Render(pad(cell, widths[i], rightAligned(i))))
			if i < numCols-1 {
				b.WriteString(dim.Render("│"))
			}
		}
		b.WriteString(dim.Render("│"))
		b.WriteString("\n")
	}

	border("╰", "┴", "╯")

	if t.Footer != "" {
		b.WriteString("  ")
		b.WriteString(mutedStyle().Render(t.Footer))
		b.WriteString("\n")
	}

	return b.String()
}

// pad fits cell into a column of width w with one space of margin each side.
func pad(cell string, w int, right bool) string {
	gap := w - lipgloss.Width(cell)
	if gap < 0 {
		gap = 0
	}
	if right {
		return " " + strings.Repeat(" ", gap) + cell + " "
	}
	return " " + cell + strings.Repeat(" ", gap) + " "
}
