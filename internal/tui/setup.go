package tui

import (
	"errors"
	"strings"

	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/edit"
	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the first-run setup form.
type SetupValues struct {
	APIURL   string
	Currency string
	Theme    string
}

// NewSetupValues seeds the setup answers from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		APIURL:   cfg.API.BaseURL,
		Currency: cfg.Ledger.DefaultCurrency,
		Theme:    cfg.Appearance.Theme,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.APIURL), "/")
	cfg.Ledger.DefaultCurrency = strings.ToUpper(strings.TrimSpace(v.Currency))
	cfg.Appearance.Theme = v.Theme
}

func validateURL(s string) error {
	if !config.ValidBaseURL(s) {
		return errors.New("enter an http:// or https:// URL")
	}
	return nil
}

func validateCurrency(s string) error {
	if !config.ValidCurrency(strings.ToUpper(strings.TrimSpace(s))) {
		return errors.New("enter a 3-letter currency code such as IDR")
	}
	return nil
}

// NewSetupForm builds the setup form bound to vals. The TUI embeds it on
// first run and `ledgr setup` runs it standalone.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ledgr").
				Description("Point ledgr at your ledger API.\nYou can change these later in Settings or with `ledgr setup`."),
			huh.NewInput().
				Title("Ledger API URL").
				Placeholder("http://localhost:3001").
				Value(&vals.APIURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Default currency").
				Placeholder("IDR").
				CharLimit(3).
				Value(&vals.Currency).
				Validate(validateCurrency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithShowHelp(true)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.applySetup()
		return a.finishSetup()
	case huh.StateAborted:
		return a.finishSetup()
	}
	return a, cmd
}

// applySetup saves the answers and rebuilds what depends on them.
func (a *App) applySetup() {
	a.setupVals.Apply(&a.cfg)
	if err := a.saveConfig(a.cfg); err != nil {
		log := logger.FromContext(a.ctx)
		log.Warn().Err(err).Msg("saving setup config")
	}
	theme.SetActive(a.cfg.Appearance.Theme)
	a.backend = a.newBackend(a.cfg.API)
	a.session = edit.New(a.now, a.cfg.Ledger.DefaultCurrency)
}

// finishSetup leaves setup and starts the first load.
func (a App) finishSetup() (tea.Model, tea.Cmd) {
	a.needSetup = false
	a.setupForm = nil
	a.refreshing = true
	a.lookupsBusy = true
	return a, tea.Batch(a.spinner.Tick, a.loadCmd(), a.lookupsCmd())
}
