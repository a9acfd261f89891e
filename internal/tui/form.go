package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/edit"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/tui/components"
	"github.com/theirongolddev/ledgr/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldType = iota
	fieldDescription
	fieldAmount
	fieldCategory
	fieldAccount
	fieldDate
	fieldTime
	fieldCount // sentinel
)

const formWidth = 64

// formState holds the widgets of the edit form. The record itself lives in
// the edit session.
type formState struct {
	focus     int
	inputs    map[int]*textinput.Model
	amountErr error
	submitErr error
}

func newFormInput(value, placeholder string, limit int) *textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.SetValue(value)
	return &ti
}

func newFormState(snap edit.Snapshot) formState {
	f := formState{
		focus: fieldDescription,
		inputs: map[int]*textinput.Model{
			fieldDescription: newFormInput(snap.Record.Description, "Lunch", 200),
			fieldAmount:      newFormInput(snap.AmountText, "0.00", 20),
			fieldDate:        newFormInput(snap.DateText, "2006-01-02", 10),
			fieldTime:        newFormInput(snap.TimeText, "15:04", 5),
		},
	}
	f.inputs[fieldDescription].Focus()
	return f
}

func (f *formState) move(delta int) {
	if in, ok := f.inputs[f.focus]; ok {
		in.Blur()
	}
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	if in, ok := f.inputs[f.focus]; ok {
		in.Focus()
	}
}

// openForm shows the form for a freshly opened session and issues its lookups.
func (a *App) openForm(fetches []edit.Fetch) tea.Cmd {
	a.form = newFormState(a.session.Snapshot())
	cmds := make([]tea.Cmd, len(fetches))
	for i, f := range fetches {
		cmds[i] = a.lookupCmd(f)
	}
	return tea.Batch(cmds...)
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.session.State() == edit.Submitting {
		return a, nil
	}

	key := msg.String()
	switch key {
	case "esc":
		a.session.Cancel()
		a.form = formState{}
		return a, nil
	case "ctrl+s":
		return a.submitForm()
	case "tab", "down":
		a.form.move(1)
		return a, nil
	case "shift+tab", "up":
		a.form.move(-1)
		return a, nil
	case "enter":
		if a.form.focus == fieldTime {
			return a.submitForm()
		}
		a.form.move(1)
		return a, nil
	}

	snap := a.session.Snapshot()
	switch a.form.focus {
	case fieldType:
		switch key {
		case "left", "right", " ", "h", "l":
			if f, ok := a.session.SetType(snap.Record.Type.Other()); ok {
				return a, a.lookupCmd(f)
			}
		}
		return a, nil

	case fieldCategory:
		ids := make([]string, len(snap.Categories))
		for i, c := range snap.Categories {
			ids[i] = c.ID
		}
		if id, ok := cycle(ids, snap.Record.Category.ID, key); ok {
			a.session.SelectCategory(id)
		}
		return a, nil

	case fieldAccount:
		ids := make([]string, len(snap.Accounts))
		for i, acc := range snap.Accounts {
			ids[i] = acc.ID
		}
		if id, ok := cycle(ids, snap.Record.Account.ID, key); ok {
			a.session.SelectAccount(id)
		}
		return a, nil
	}

	in, ok := a.form.inputs[a.form.focus]
	if !ok {
		return a, nil
	}
	updated, cmd := in.Update(msg)
	*in = updated

	val := in.Value()
	switch a.form.focus {
	case fieldDescription:
		_ = a.session.SetDescription(val)
	case fieldAmount:
		a.form.amountErr = a.session.SetAmountText(val)
	case fieldDate:
		_ = a.session.SetDateText(val)
	case fieldTime:
		_ = a.session.SetTimeText(val)
	}
	return a, cmd
}

// cycle steps through ids from current on left/right.
func cycle(ids []string, current, key string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	var delta int
	switch key {
	case "right", "l", " ":
		delta = 1
	case "left", "h":
		delta = -1
	default:
		return "", false
	}

	idx := -1
	for i, id := range ids {
		if id == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta > 0 {
			return ids[0], true
		}
		return ids[len(ids)-1], true
	}
	return ids[(idx+delta+len(ids))%len(ids)], true
}

func (a App) submitForm() (tea.Model, tea.Cmd) {
	tx, err := a.session.Submit()
	if err != nil {
		a.form.submitErr = err
		return a, nil
	}
	a.form.submitErr = nil
	return a, a.saveCmd(tx)
}

func (a App) renderForm(cw int) string {
	t := theme.Active
	snap := a.session.Snapshot()

	w := formWidth
	if w > cw-4 {
		w = cw - 4
	}

	surface := lipgloss.NewStyle().Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	focusLabel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	income := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	expense := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)

	var b strings.Builder
	line := func(field int, name, body string) {
		marker, ls := surface.Render("  "), label
		if a.form.focus == field {
			marker, ls = focusLabel.Render("▸ "), focusLabel
		}
		b.WriteString(marker + ls.Render(fmt.Sprintf("%-13s", name)) + body + "\n")
	}
	input := func(field int) string {
		if in, ok := a.form.inputs[field]; ok {
			return in.View()
		}
		return ""
	}
	selector := func(name string, loading, failed bool, n int) string {
		switch {
		case loading:
			return a.spinner.View() + dim.Render(" loading "+name+"...")
		case failed:
			return warn.Render(name + " unavailable")
		case n == 0:
			return dim.Render("no " + name)
		}
		return ""
	}

	var typeBody string
	if snap.Record.Type == model.Income {
		typeBody = dim.Render("○ Expense  ") + income.Render("● Income")
	} else {
		typeBody = expense.Render("● Expense") + dim.Render("  ○ Income")
	}
	line(fieldType, "Type", typeBody)
	line(fieldDescription, "Description", input(fieldDescription))

	amountBody := value.Render(snap.Record.Currency+" ") + input(fieldAmount)
	if a.form.amountErr != nil {
		amountBody += warn.Render(" invalid")
	}
	line(fieldAmount, "Amount", amountBody)

	catBody := selector("categories", snap.CategoriesLoading, snap.CategoriesFailed, len(snap.Categories))
	if catBody == "" {
		catBody = choice(snap.Record.Category.Name, value, dim)
	}
	line(fieldCategory, "Category", catBody)

	acctBody := selector("accounts", snap.AccountsLoading, snap.AccountsFailed, len(snap.Accounts))
	if acctBody == "" {
		acctBody = choice(snap.Record.Account.Name, value, dim)
	}
	line(fieldAccount, "Account", acctBody)

	line(fieldDate, "Date", input(fieldDate))
	line(fieldTime, "Time", input(fieldTime))

	b.WriteString("\n")
	if len(snap.Problems) > 0 {
		b.WriteString(dim.Render(truncStr(strings.Join(snap.Problems, "; "), w-4)) + "\n")
	}
	if a.form.submitErr != nil {
		b.WriteString(warn.Render(truncStr(a.form.submitErr.Error(), w-4)) + "\n")
	}
	if snap.LastError != nil {
		b.WriteString(warn.Render(truncStr("Save failed: "+snap.LastError.Error(), w-4)) + "\n")
	}

	saveHint := dim.Render("[ctrl+s] save")
	switch {
	case snap.State == edit.Submitting:
		saveHint = a.spinner.View() + value.Render(" saving...")
	case snap.Valid:
		saveHint = focusLabel.Render("[ctrl+s] save")
	}
	b.WriteString(saveHint + dim.Render("  [tab] next  [←→] change  [esc] cancel"))

	title := "Edit Transaction"
	if snap.Creating {
		title = "New Transaction"
	}
	if snap.Record.Persisted() {
		title += dim.Render("  #" + snap.Record.ID)
	}
	return components.FocusCard(title, b.String(), w)
}

func choice(name string, value, dim lipgloss.Style) string {
	if name == "" {
		return dim.Render("‹ select ›")
	}
	return dim.Render("‹ ") + value.Render(name) + dim.Render(" ›")
}

// ─── Delete confirmation ────────────────────────────────────────

func (a *App) openConfirm(tx model.Transaction) tea.Cmd {
	a.pendingDelete = tx
	*a.confirmYes = false
	a.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", tx.Description)).
				Description(cli.FormatSigned(tx, a.cfg.Ledger.DefaultCurrency) + " on " + cli.FormatLongDate(tx.Date())).
				Affirmative("Delete").
				Negative("Cancel").
				Value(a.confirmYes),
		),
	).WithShowHelp(false).WithWidth(formWidth - 4)
	return a.confirm.Init()
}

func (a App) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.confirm = nil
		return a, nil
	}

	form, cmd := a.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.confirm = f
	}

	switch a.confirm.State {
	case huh.StateCompleted:
		a.confirm = nil
		if *a.confirmYes {
			return a, a.deleteCmd(a.pendingDelete.ID)
		}
		return a, nil
	case huh.StateAborted:
		a.confirm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) renderConfirm() string {
	return components.FocusCard("Delete Transaction", a.confirm.View(), formWidth)
}
