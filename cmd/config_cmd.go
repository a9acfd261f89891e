package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", orUnset(cfg.API.BaseURL))
	fmt.Printf("    Timeout:  %ds\n", cfg.API.TimeoutSec)
	fmt.Println()

	fmt.Println("  [Ledger]")
	fmt.Printf("    Currency:     %s\n", cfg.Ledger.DefaultCurrency)
	fmt.Printf("    Grouping:     %s\n", cfg.Ledger.Grouping)
	fmt.Printf("    Day order:    %s\n", cfg.Ledger.DayOrder)
	if cfg.Ledger.DefaultDays > 0 {
		fmt.Printf("    Default days: %d\n", cfg.Ledger.DefaultDays)
	} else {
		fmt.Println("    Default days: everything")
	}
	fmt.Printf("    Cache:        %s\n", pipeline.CachePath())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	if cfg.TUI.AutoRefresh {
		fmt.Printf("    Auto refresh: every %ds\n", cfg.TUI.RefreshIntervalSec)
	} else {
		fmt.Println("    Auto refresh: off")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = pipeline.LogPath()
	}
	fmt.Printf("    File:  %s\n", logFile)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Origins:  %s\n", orUnset(strings.Join(cfg.Daemon.AllowedOrigins, ", ")))
	fmt.Printf("    Rate:     %.1f/s, burst %d\n", cfg.Daemon.RatePerSec, cfg.Daemon.Burst)
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Println("  Problems:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("    - %s\n", line)
		}
		fmt.Println()
	}

	fmt.Println("  Run `ledgr setup` to reconfigure.")
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "not configured"
	}
	return s
}
