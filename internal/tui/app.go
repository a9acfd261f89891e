// Package tui provides the interactive Bubble Tea ledger browser for ledgr.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/edit"
	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/pipeline"
	"github.com/theirongolddev/ledgr/internal/tui/components"
	"github.com/theirongolddev/ledgr/internal/tui/theme"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// Backend is the remote ledger as the dashboard uses it.
type Backend interface {
	pipeline.Source
	Accounts(ctx context.Context) ([]model.Account, error)
	Categories(ctx context.Context, typ model.TxType) ([]model.Category, error)
	Lookup(ctx context.Context, f edit.Fetch) edit.Result
	Save(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// Filters narrows the loaded ledger before grouping.
type Filters struct {
	Since    civil.Date
	Account  string
	Category string
	Type     model.TxType
}

func (f Filters) active() bool {
	return f.Account != "" || f.Category != "" || f.Type != ""
}

// Options configures a new App.
type Options struct {
	Config     config.Config
	NewBackend func(config.APIConfig) Backend
	Cache      pipeline.Cache // nil disables the offline snapshot
	Filters    Filters
	NeedSetup  bool
	Context    context.Context // carries the logger
	SaveConfig func(config.Config) error
	Now        func() time.Time
}

type dataLoadedMsg struct {
	result *pipeline.LoadResult
	err    error
	took   time.Duration
}

type lookupsLoadedMsg struct {
	accounts   []model.Account
	categories []model.Category
	err        error
}

type lookupMsg struct {
	result edit.Result
}

type savedMsg struct {
	tx  model.Transaction
	err error
}

type deletedMsg struct {
	id  string
	err error
}

type tickMsg struct{}

const (
	tabTransactions = iota
	tabAccounts
	tabCategories
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight   = 5
	minRefreshInterval = 10 * time.Second
	noticeDuration     = 3 * time.Second

	loadTimeout   = 30 * time.Second
	lookupTimeout = 15 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	ctx        context.Context
	cfg        config.Config
	newBackend func(config.APIConfig) Backend
	backend    Backend
	cache      pipeline.Cache
	saveConfig func(config.Config) error
	now        func() time.Time

	// Data
	result      *pipeline.LoadResult
	loadErr     error
	loaded      bool
	loadTime    time.Duration
	grouping    pipeline.Grouping
	order       pipeline.DayOrder
	filters     Filters
	days        []model.DayGroup
	rows        []model.Transaction
	totals      model.Totals
	accounts    []model.Account
	categories  []model.Category
	lookupsErr  error
	lookupsBusy bool

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	notice    string
	noticeAt  time.Time

	// Per-tab state
	tx       txState
	lists    [tabSettings]int // row cursor of the table tabs
	settings settingsState

	// Edit form
	session *edit.Session
	form    formState

	// Delete confirmation (huh form)
	confirm       *huh.Form
	confirmYes    *bool
	pendingDelete model.Transaction

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

// NewApp creates the root model.
func NewApp(opts Options) App {
	cfg := opts.Config
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	save := opts.SaveConfig
	if save == nil {
		save = config.Save
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	grouping, err := pipeline.ParseGrouping(cfg.Ledger.Grouping)
	if err != nil {
		grouping = pipeline.GroupLocal
	}
	order, err := pipeline.ParseDayOrder(cfg.Ledger.DayOrder)
	if err != nil {
		order = pipeline.OrderNewest
	}

	interval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if interval < minRefreshInterval {
		interval = time.Duration(config.DefaultConfig().TUI.RefreshIntervalSec) * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		ctx:             ctx,
		cfg:             cfg,
		newBackend:      opts.NewBackend,
		cache:           opts.Cache,
		saveConfig:      save,
		now:             now,
		grouping:        grouping,
		order:           order,
		filters:         opts.Filters,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: interval,
		session:         edit.New(now, cfg.Ledger.DefaultCurrency),
		needSetup:       opts.NeedSetup,
		spinner:         sp,
		confirmYes:      new(bool),
		tx:              newTxState(),
	}
	a.backend = a.newBackend(cfg.API)

	if a.needSetup {
		a.setupVals = NewSetupValues(cfg)
		a.setupForm = NewSetupForm(a.setupVals)
	} else {
		a.refreshing = true
		a.lookupsBusy = true
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.needSetup {
		return tea.Batch(a.setupForm.Init(), tickCmd())
	}
	return tea.Batch(a.spinner.Tick, a.loadCmd(), a.lookupsCmd(), tickCmd())
}

// recompute applies the filters and day order to the loaded ledger.
func (a *App) recompute() {
	if a.result == nil {
		a.days, a.rows, a.totals = nil, nil, model.Totals{}
		return
	}

	if !a.filters.active() && a.filters.Since.IsZero() && a.tx.query == "" {
		a.days = pipeline.SortDays(a.result.Days, a.order)
	} else {
		txs := pipeline.FilterByDateRange(a.result.Transactions, a.filters.Since, civil.Date{})
		txs = pipeline.FilterByAccount(txs, a.filters.Account)
		txs = pipeline.FilterByCategory(txs, a.filters.Category)
		if a.filters.Type != "" {
			txs = pipeline.FilterByType(txs, a.filters.Type)
		}
		txs = pipeline.FilterByText(txs, a.tx.query)
		a.days = pipeline.SortDays(pipeline.GroupByDay(txs), a.order)
	}

	a.rows = pipeline.Flatten(a.days)
	a.totals = pipeline.Summarize(a.days)
	if a.tx.cursor >= len(a.rows) {
		a.tx.cursor = len(a.rows) - 1
	}
	if a.tx.cursor < 0 {
		a.tx.cursor = 0
	}
}

func (a *App) flash(msg string) {
	a.notice = msg
	a.noticeAt = a.now()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case dataLoadedMsg:
		a.loaded = true
		a.refreshing = false
		a.lastRefresh = a.now()
		a.loadTime = msg.took
		a.loadErr = msg.err
		if msg.result != nil {
			a.result = msg.result
			a.recompute()
		}
		return a, nil

	case lookupsLoadedMsg:
		a.lookupsBusy = false
		a.lookupsErr = msg.err
		if msg.err == nil {
			a.accounts = msg.accounts
			a.categories = msg.categories
		}
		return a, nil

	case lookupMsg:
		if a.session.Resolve(msg.result) && msg.result.Err != nil {
			log := logger.FromContext(a.ctx)
			log.Warn().Err(msg.result.Err).
				Stringer("kind", msg.result.Fetch.Kind).Msg("lookup failed")
		}
		return a, nil

	case savedMsg:
		if msg.err != nil {
			log := logger.FromContext(a.ctx)
			log.Error().Err(msg.err).Msg("saving transaction")
		}
		if err := a.session.Complete(msg.err); err != nil || msg.err != nil {
			return a, nil
		}
		a.form = formState{}
		a.flash("Saved " + msg.tx.Description)
		a.refreshing = true
		return a, a.loadCmd()

	case deletedMsg:
		if msg.err != nil {
			log := logger.FromContext(a.ctx)
			log.Error().Err(msg.err).Str("id", msg.id).Msg("deleting transaction")
			a.flash("Delete failed: " + msg.err.Error())
			return a, nil
		}
		a.flash("Deleted")
		a.refreshing = true
		return a, a.loadCmd()

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		now := a.now()

		if a.notice != "" && now.Sub(a.noticeAt) >= noticeDuration {
			a.notice = ""
		}

		if a.loaded && a.autoRefresh && !a.refreshing && !a.session.Active() {
			if now.Sub(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, a.loadCmd(), a.spinner.Tick)
			}
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the active huh form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.confirm != nil {
		return a.updateConfirm(msg)
	}
	return a, nil
}

func (a App) busy() bool {
	return !a.loaded || a.refreshing || a.lookupsBusy || a.session.State() == edit.Loading
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if !a.loaded {
		return a, nil
	}

	if a.confirm != nil {
		return a.updateConfirm(msg)
	}

	if a.session.Active() {
		return a.updateForm(msg)
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if a.activeTab == tabTransactions && a.tx.searching {
		return a.updateSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	var (
		handled bool
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case tabTransactions:
		handled, cmd = a.updateTransactionsKey(key)
	case tabAccounts:
		handled = a.updateAccountsKey(key)
	case tabCategories:
		handled = a.updateCategoriesKey(key)
	case tabSettings:
		handled, cmd = a.updateSettingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "n":
		return a, a.openForm(a.session.OpenCreate())
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, tea.Batch(a.loadCmd(), a.lookupsCmd(), a.spinner.Tick)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		a.cfg.TUI.AutoRefresh = a.autoRefresh
		if err := a.saveConfig(a.cfg); err != nil {
			log := logger.FromContext(a.ctx)
			log.Warn().Err(err).Msg("saving config")
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || a.setupForm != nil || a.confirm != nil || a.session.Active() {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabTransactions:
		a.tx.cursor = clamp(a.tx.cursor+delta, len(a.rows))
	case tabAccounts, tabCategories:
		a.lists[a.activeTab] = clamp(a.lists[a.activeTab]+delta, a.listLen(a.activeTab))
	case tabSettings:
		a.settings.cursor = clamp(a.settings.cursor+delta, settingsFieldCount)
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  ledgr needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ ledgr"))
	b.WriteString(subtitleStyle.Render(" · Daily Ledger"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Fetching transactions from " + a.cfg.API.BaseURL))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"t a c x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Navigate lists"},
			{"g G", "First / Last row"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Transactions", []struct{ key, desc string }{
			{"Enter", "Show details"},
			{"n", "New transaction"},
			{"e", "Edit selected"},
			{"d", "Delete selected"},
			{"/", "Search descriptions"},
			{"f", "Cycle type filter"},
			{"Esc", "Clear search / filters"},
		}},
		{"General", []struct{ key, desc string }{
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFilterPill(w)

	info := components.StatusInfo{
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Notice:      a.notice,
	}
	if a.result != nil {
		info.DataAge = cli.FormatAge(a.result.FetchedAt, a.now())
		info.Stale = a.result.Stale
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch {
	case a.session.Active():
		content = lipgloss.Place(cw, contentH, lipgloss.Center, lipgloss.Center, a.renderForm(cw),
			lipgloss.WithWhitespaceBackground(t.Background))
	case a.confirm != nil:
		content = lipgloss.Place(cw, contentH, lipgloss.Center, lipgloss.Center, a.renderConfirm(),
			lipgloss.WithWhitespaceBackground(t.Background))
	default:
		switch a.activeTab {
		case tabTransactions:
			content = a.renderTransactionsTab(cw, contentH)
		case tabAccounts:
			content = a.renderAccountsTab(cw, contentH)
		case tabCategories:
			content = a.renderCategoriesTab(cw, contentH)
		case tabSettings:
			content = a.renderSettingsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderFilterPill(w int) string {
	t := theme.Active
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	parts := []string{accent.Render(string(a.grouping)), accent.Render(string(a.order))}
	if !a.filters.Since.IsZero() {
		parts = append(parts, pill.Render("since ")+accent.Render(a.filters.Since.String()))
	}
	if a.filters.Account != "" {
		parts = append(parts, pill.Render("account ")+accent.Render(a.filters.Account))
	}
	if a.filters.Category != "" {
		parts = append(parts, pill.Render("category ")+accent.Render(a.filters.Category))
	}
	if a.filters.Type != "" {
		parts = append(parts, accent.Render(a.filters.Type.Label()))
	}
	if a.tx.query != "" {
		parts = append(parts, pill.Render("search ")+accent.Render(a.tx.query))
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(w).
		Render(pill.Render(" ") + strings.Join(parts, pill.Render(" │ ")))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (a App) loadOptions() pipeline.LoadOptions {
	return pipeline.LoadOptions{Grouping: a.grouping, Order: a.order}
}

// loadCmd fetches the ledger, falling back to the cache snapshot on failure.
func (a App) loadCmd() tea.Cmd {
	ctx, backend, cache, opts := a.ctx, a.backend, a.cache, a.loadOptions()
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()

		res, err := pipeline.Load(ctx, backend, cache, opts)
		return dataLoadedMsg{result: res, err: err, took: time.Since(start)}
	}
}

// lookupsCmd fetches accounts and both category scopes concurrently for the
// list tabs.
func (a App) lookupsCmd() tea.Cmd {
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()

		var (
			accounts []model.Account
			income   []model.Category
			expense  []model.Category
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			accounts, err = backend.Accounts(gctx)
			return err
		})
		g.Go(func() (err error) {
			income, err = backend.Categories(gctx, model.Income)
			return err
		})
		g.Go(func() (err error) {
			expense, err = backend.Categories(gctx, model.Expense)
			return err
		})
		if err := g.Wait(); err != nil {
			return lookupsLoadedMsg{err: err}
		}
		return lookupsLoadedMsg{accounts: accounts, categories: append(income, expense...)}
	}
}

// lookupCmd performs one edit session lookup.
func (a App) lookupCmd(f edit.Fetch) tea.Cmd {
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		return lookupMsg{result: backend.Lookup(ctx, f)}
	}
}

func (a App) saveCmd(tx model.Transaction) tea.Cmd {
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		saved, err := backend.Save(ctx, tx)
		return savedMsg{tx: saved, err: err}
	}
}

func (a App) deleteCmd(id string) tea.Cmd {
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		return deletedMsg{id: id, err: backend.Delete(ctx, id)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
