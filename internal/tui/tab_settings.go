package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/edit"
	"github.com/theirongolddev/ledgr/internal/pipeline"
	"github.com/theirongolddev/ledgr/internal/tui/components"
	"github.com/theirongolddev/ledgr/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldAPIURL = iota
	settingsFieldCurrency
	settingsFieldTheme
	settingsFieldGrouping
	settingsFieldDayOrder
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

var settingsLabels = [settingsFieldCount]string{
	"API URL",
	"Currency",
	"Theme",
	"Grouping",
	"Day Order",
	"Auto Refresh",
	"Refresh Interval",
}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a *App) updateSettingsKey(key string) (bool, tea.Cmd) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "enter":
		return true, a.settingsStartEdit()
	default:
		return false, nil
	}
	return true, nil
}

// settingsValue returns the current display value of a field.
func (a App) settingsValue(field int) string {
	switch field {
	case settingsFieldAPIURL:
		return a.cfg.API.BaseURL
	case settingsFieldCurrency:
		return a.cfg.Ledger.DefaultCurrency
	case settingsFieldTheme:
		return theme.Active.Name
	case settingsFieldGrouping:
		return string(a.grouping)
	case settingsFieldDayOrder:
		return string(a.order)
	case settingsFieldAutoRefresh:
		return strconv.FormatBool(a.autoRefresh)
	case settingsFieldRefreshInterval:
		return strconv.Itoa(int(a.refreshInterval.Seconds()))
	}
	return ""
}

func settingsPlaceholder(field int) string {
	switch field {
	case settingsFieldAPIURL:
		return "http://localhost:3001"
	case settingsFieldCurrency:
		return "IDR"
	case settingsFieldTheme:
		return strings.Join(theme.Names(), ", ")
	case settingsFieldGrouping:
		return "local or server"
	case settingsFieldDayOrder:
		return "newest, oldest or input"
	case settingsFieldAutoRefresh:
		return "true or false"
	case settingsFieldRefreshInterval:
		return "60 (seconds, minimum 10)"
	}
	return ""
}

func (a *App) settingsStartEdit() tea.Cmd {
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	ti.Placeholder = settingsPlaceholder(a.settings.cursor)
	ti.SetValue(a.settingsValue(a.settings.cursor))
	cmd := ti.Focus()
	a.settings.input = ti
	return cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates and applies the edited field, persists the config,
// and returns a reload command when the change affects the fetched data.
func (a *App) settingsSave() tea.Cmd {
	val := strings.TrimSpace(a.settings.input.Value())
	cfg := a.cfg
	reload := false

	invalid := func() tea.Cmd {
		a.settings.saveErr = fmt.Errorf("invalid %s %q", strings.ToLower(settingsLabels[a.settings.cursor]), val)
		return nil
	}

	switch a.settings.cursor {
	case settingsFieldAPIURL:
		if !config.ValidBaseURL(val) {
			return invalid()
		}
		cfg.API.BaseURL = strings.TrimRight(val, "/")
		reload = true
	case settingsFieldCurrency:
		code := strings.ToUpper(val)
		if !config.ValidCurrency(code) {
			return invalid()
		}
		cfg.Ledger.DefaultCurrency = code
	case settingsFieldTheme:
		found := false
		for _, name := range theme.Names() {
			if name == val {
				found = true
				break
			}
		}
		if !found {
			return invalid()
		}
		cfg.Appearance.Theme = val
	case settingsFieldGrouping:
		g, err := pipeline.ParseGrouping(val)
		if err != nil {
			return invalid()
		}
		cfg.Ledger.Grouping = string(g)
		reload = g != a.grouping
	case settingsFieldDayOrder:
		o, err := pipeline.ParseDayOrder(val)
		if err != nil || val == "" {
			return invalid()
		}
		cfg.Ledger.DayOrder = string(o)
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return invalid()
		}
		cfg.TUI.AutoRefresh = b
	case settingsFieldRefreshInterval:
		n, err := strconv.Atoi(val)
		if err != nil || time.Duration(n)*time.Second < minRefreshInterval {
			return invalid()
		}
		cfg.TUI.RefreshIntervalSec = n
	}

	a.settings.saveErr = a.saveConfig(cfg)
	if a.settings.saveErr != nil {
		return nil
	}
	a.applyConfig(cfg)

	if reload && !a.refreshing {
		a.refreshing = true
		return tea.Batch(a.loadCmd(), a.lookupsCmd(), a.spinner.Tick)
	}
	return nil
}

// applyConfig makes cfg the live configuration.
func (a *App) applyConfig(cfg config.Config) {
	if cfg.API != a.cfg.API {
		a.backend = a.newBackend(cfg.API)
	}
	if cfg.Ledger.DefaultCurrency != a.cfg.Ledger.DefaultCurrency {
		a.session = edit.New(a.now, cfg.Ledger.DefaultCurrency)
	}
	if cfg.Appearance.Theme != a.cfg.Appearance.Theme {
		theme.SetActive(cfg.Appearance.Theme)
	}

	if g, err := pipeline.ParseGrouping(cfg.Ledger.Grouping); err == nil {
		a.grouping = g
	}
	if o, err := pipeline.ParseDayOrder(cfg.Ledger.DayOrder); err == nil {
		a.order = o
	}
	a.autoRefresh = cfg.TUI.AutoRefresh
	if d := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second; d >= minRefreshInterval {
		a.refreshInterval = d
	}

	a.cfg = cfg
	a.recompute()
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)

	var formBody strings.Builder
	for i, label := range settingsLabels {
		value := a.settingsValue(i)
		if i == settingsFieldRefreshInterval {
			value += "s"
		}

		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(accentStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			l := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", label+":"))
			v := selectedStyle.Render(value)
			formBody.WriteString(marker + l + v)
			if pad := components.CardInnerWidth(cw) - lipgloss.Width(marker+l+v); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", label+":")))
			formBody.WriteString(valueStyle.Render(value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	row := func(l, v string) {
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", l)) + valueStyle.Render(v) + "\n")
	}
	if a.result != nil {
		row("Transactions:", cli.FormatNumber(int64(len(a.result.Transactions))))
		row("Fetched:", cli.FormatAge(a.result.FetchedAt, a.now()))
	}
	row("Accounts:", cli.FormatNumber(int64(len(a.accounts))))
	row("Categories:", cli.FormatNumber(int64(len(a.categories))))
	row("Load time:", fmt.Sprintf("%.1fs", a.loadTime.Seconds()))
	row("Cache:", pipeline.CachePath())
	infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", "Config file:")) + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
