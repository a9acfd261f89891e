package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/tui/components"
	"github.com/theirongolddev/ledgr/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// sparkDays is how many recent days the expense sparkline covers.
const sparkDays = 30

type txState struct {
	cursor      int
	showDetail  bool // compact layout: detail card replaces the list
	searching   bool
	searchInput textinput.Model
	query       string
}

func newTxState() txState {
	return txState{searchInput: newSearchInput()}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "description..."
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

func (a App) selected() (model.Transaction, bool) {
	if a.tx.cursor < 0 || a.tx.cursor >= len(a.rows) {
		return model.Transaction{}, false
	}
	return a.rows[a.tx.cursor], true
}

func (a App) halfPage() int {
	half := (a.height - 10) / 2
	if half < 1 {
		half = 1
	}
	return half
}

func (a *App) updateTransactionsKey(key string) (bool, tea.Cmd) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g":
		a.tx.cursor = 0
	case "G":
		a.tx.cursor = clamp(len(a.rows)-1, len(a.rows))
	case "ctrl+d":
		a.moveCursor(a.halfPage())
	case "ctrl+u":
		a.moveCursor(-a.halfPage())
	case "enter":
		if _, ok := a.selected(); ok && a.isCompactLayout() {
			a.tx.showDetail = !a.tx.showDetail
		}
	case "esc":
		switch {
		case a.tx.showDetail:
			a.tx.showDetail = false
		case a.tx.query != "":
			a.tx.query = ""
			a.tx.cursor = 0
			a.recompute()
		case a.filters.active():
			a.filters.Account, a.filters.Category, a.filters.Type = "", "", ""
			a.tx.cursor = 0
			a.recompute()
		}
	case "/":
		a.tx.searching = true
		a.tx.searchInput = newSearchInput()
		a.tx.searchInput.SetValue(a.tx.query)
		return true, a.tx.searchInput.Focus()
	case "f":
		switch a.filters.Type {
		case "":
			a.filters.Type = model.Expense
		case model.Expense:
			a.filters.Type = model.Income
		default:
			a.filters.Type = ""
		}
		a.tx.cursor = 0
		a.recompute()
	case "e":
		tx, ok := a.selected()
		if !ok {
			return true, nil
		}
		return true, a.openForm(a.session.OpenEdit(tx))
	case "d":
		tx, ok := a.selected()
		if !ok {
			return true, nil
		}
		return true, a.openConfirm(tx)
	default:
		return false, nil
	}
	return true, nil
}

// updateSearch handles key events while in search mode.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.tx.query = strings.TrimSpace(a.tx.searchInput.Value())
		a.tx.searching = false
		a.tx.cursor = 0
		a.recompute()
		return a, nil
	case "esc":
		a.tx.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.tx.searchInput, cmd = a.tx.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderTransactionsTab(cw, h int) string {
	var b strings.Builder

	summary := a.renderSummary(cw)
	b.WriteString(summary)
	b.WriteString("\n")
	used := lipgloss.Height(summary)

	if banner := a.renderBanner(cw); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
		used += lipgloss.Height(banner)
	}

	listH := h - used
	if listH < 5 {
		listH = 5
	}

	tx, ok := a.selected()
	switch {
	case a.isCompactLayout() && a.tx.showDetail && ok:
		b.WriteString(components.ContentCard("Transaction Details", a.renderDetailBody(tx), cw))
	case !a.isCompactLayout():
		listW := cw * 3 / 5
		detailW := cw - listW
		detail := components.ContentCard("Transaction Details", a.emptyHint("Select a transaction"), detailW)
		if ok {
			detail = components.ContentCard("Transaction Details", a.renderDetailBody(tx), detailW)
		}
		b.WriteString(components.CardRow([]string{a.renderDayList(listW, listH), detail}))
	default:
		b.WriteString(a.renderDayList(cw, listH))
	}

	return b.String()
}

func (a App) renderSummary(cw int) string {
	t := theme.Active
	cur := a.cfg.Ledger.DefaultCurrency
	net := a.totals.Net

	netColor := t.Green
	if net.IsNegative() {
		netColor = t.Red
	}

	// oldest first for the sparkline, whatever the display order
	spark := make([]float64, len(a.days))
	for i, d := range a.days {
		spark[i] = d.TotalExpense.InexactFloat64()
	}
	if len(a.days) > 1 && a.days[0].Date.After(a.days[len(a.days)-1].Date) {
		for i, j := 0, len(spark)-1; i < j; i, j = i+1, j-1 {
			spark[i], spark[j] = spark[j], spark[i]
		}
	}
	if len(spark) > sparkDays {
		spark = spark[len(spark)-sparkDays:]
	}

	metrics := []components.Metric{
		{Label: "Income", Value: cli.FormatIncome(cur, a.totals.Income), Color: t.Green},
		{Label: "Expense", Value: cli.FormatExpense(cur, a.totals.Expense), Color: t.Red,
			Delta: components.Sparkline(spark, t.Red)},
		{Label: "Net", Value: cli.FormatNet(cur, net), Color: netColor},
		{Label: "Transactions", Value: cli.FormatNumber(int64(a.totals.Transactions)),
			Delta: fmt.Sprintf("%d day(s)", a.totals.Days)},
	}
	if !a.totals.Income.IsZero() {
		ratio := a.totals.Expense.Div(a.totals.Income).InexactFloat64()
		metrics[2].Delta = components.RatioBar(ratio, 10)
	}

	return components.MetricCardRow(metrics, cw)
}

// renderBanner shows the search box and load errors above the list.
func (a App) renderBanner(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background).Bold(true)

	var lines []string
	if a.tx.searching {
		lines = append(lines, muted.Render(" Search: ")+a.tx.searchInput.View())
	}
	if a.loadErr != nil {
		msg := "fetch failed: " + a.loadErr.Error()
		switch {
		case a.result != nil && a.result.Stale:
			msg += " (showing cached data from " + cli.FormatAge(a.result.FetchedAt, a.now()) + ")"
		case a.result != nil:
			msg += " (showing previous data)"
		}
		lines = append(lines, warn.Render(" ⚠ "+truncStr(msg, cw-4)))
	}
	return strings.Join(lines, "\n")
}

func (a App) emptyHint(msg string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg)
}

// renderDayList renders the day headers and transaction rows, scrolled so
// the cursor row is visible.
func (a App) renderDayList(w, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	title := fmt.Sprintf("Transactions [%d]", len(a.rows))

	if len(a.rows) == 0 {
		msg := "No transactions found"
		if a.result == nil && a.loadErr != nil {
			msg = "Could not load transactions"
		}
		return components.ContentCard(title, a.emptyHint(msg), w)
	}

	surface := lipgloss.NewStyle().Background(t.Surface)
	dayStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	income := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	expense := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	const timeW, amountW = 6, 18
	catW := innerW / 5
	descW := innerW - timeW - catW - amountW - 4
	if descW < 8 {
		descW = 8
	}

	var lines []string
	cursorLine := 0
	idx := 0
	fallback := a.cfg.Ledger.DefaultCurrency
	for _, g := range a.days {
		cur := g.Currency(fallback)
		lines = append(lines, dayStyle.Render(cli.FormatDayNumber(g.Date))+
			muted.Render(" "+cli.FormatMonthYear(g.Date)+" "+cli.FormatDayOfWeek(g.Date)+"  ")+
			income.Render(cli.FormatIncome(cur, g.TotalIncome))+surface.Render("  ")+
			expense.Render(cli.FormatExpense(cur, g.TotalExpense)))

		for _, tx := range g.Transactions {
			amountStyle := expense
			if tx.Type == model.Income {
				amountStyle = income
			}

			row := fmt.Sprintf(" %-*s%-*s %-*s ",
				timeW, model.FormatClock(tx.Timestamp.Time),
				descW, truncStr(tx.Description, descW),
				catW, truncStr(tx.Category.Name, catW))
			amount := fmt.Sprintf("%*s", amountW, cli.FormatSigned(tx, fallback))

			if idx == a.tx.cursor {
				cursorLine = len(lines)
				hl := lipgloss.NewStyle().Background(t.SurfaceHover)
				lines = append(lines,
					hl.Foreground(t.AccentBright).Bold(true).Render("▸"+row)+
						hl.Foreground(amountStyle.GetForeground()).Bold(true).Render(amount))
			} else {
				lines = append(lines, surface.Render(" ")+muted.Render(row)+amountStyle.Render(amount))
			}
			idx++
		}
	}

	visible := h - 3 // border and title
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursorLine >= visible {
		start = cursorLine - visible + 1
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}

	body := strings.Join(lines[start:end], "\n")
	if start > 0 || end < len(lines) {
		title += dim.Render(fmt.Sprintf("  %d-%d of %d lines", start+1, end, len(lines)))
	}
	return components.ContentCard(title, body, w)
}

// renderDetailBody renders the transaction detail fields.
func (a App) renderDetailBody(tx model.Transaction) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	amountColor := t.Red
	if tx.Type == model.Income {
		amountColor = t.Green
	}
	amount := lipgloss.NewStyle().Foreground(amountColor).Background(t.Surface).Bold(true)

	row := func(l, v string, style lipgloss.Style) string {
		return label.Render(fmt.Sprintf("%-15s", l)) + style.Render(v) + "\n"
	}

	var b strings.Builder
	b.WriteString(row("Description", tx.Description, value.Bold(true)))
	b.WriteString(row("Amount", cli.FormatSigned(tx, a.cfg.Ledger.DefaultCurrency), amount))
	b.WriteString(row("Type", tx.Type.Label(), value))
	b.WriteString(row("Category", tx.Category.Name, value))
	b.WriteString(row("Account", tx.Account.Name, value))
	b.WriteString(row("Date", cli.FormatLongDate(tx.Date())+" "+model.FormatClock(tx.Timestamp.Time), value))
	b.WriteString(row("Transaction ID", tx.ID, dim))
	b.WriteString("\n")
	b.WriteString(dim.Render("[e]dit  [d]elete  [n]ew"))
	return b.String()
}
