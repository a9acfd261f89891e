package cmd

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/ledgerapi"
	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/pipeline"
	"github.com/theirongolddev/ledgr/internal/store"
	"github.com/theirongolddev/ledgr/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive ledger dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// The alt screen owns stderr, so log to a file instead.
	logPath := appCfg.Log.File
	if logPath == "" {
		logPath = pipeline.LogPath()
	}
	log, closer, err := logger.OpenFile(logPath, appCfg.Log.Level)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = closer.Close() }()
	ctx := logger.WithContext(cmd.Context(), log)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	filters := tui.Filters{Account: flagAccount, Category: flagCategory}
	if d := windowDays(); d > 0 {
		filters.Since = civil.DateOf(time.Now()).AddDays(-(d - 1))
	}
	if flagType != "" {
		typ, err := model.ParseTxType(flagType)
		if err != nil {
			return err
		}
		filters.Type = typ
	}

	opts := tui.Options{
		Config: appCfg,
		NewBackend: func(c config.APIConfig) tui.Backend {
			return ledgerapi.New(c)
		},
		Filters:    filters,
		NeedSetup:  !config.Exists(),
		Context:    ctx,
		SaveConfig: config.Save,
		Now:        time.Now,
	}
	if !flagNoCache {
		c, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.Warn().Err(err).Msg("cache unavailable")
		} else {
			defer func() { _ = c.Close() }()
			opts.Cache = c
		}
	}

	log.Info().Str("api", appCfg.API.BaseURL).Msg("tui starting")
	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
