// Package config loads and saves the ledgr TOML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIURL   = "LEDGR_API_URL"
	EnvLogLevel = "LEDGR_LOG_LEVEL"
)

// Config holds all ledgr configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Log        LogConfig        `toml:"log"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// APIConfig holds the remote ledger API settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// LedgerConfig holds display and grouping preferences.
type LedgerConfig struct {
	DefaultCurrency string `toml:"default_currency"`
	Grouping        string `toml:"grouping"`  // local or server
	DayOrder        string `toml:"day_order"` // input, newest or oldest
	DefaultDays     int    `toml:"default_days"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard behavior.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// LogConfig holds logging settings. An empty file means the default path.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DaemonConfig holds mirror daemon settings.
type DaemonConfig struct {
	Addr           string   `toml:"addr"`
	IntervalSec    int      `toml:"interval_sec"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RatePerSec     float64  `toml:"rate_per_sec"`
	Burst          int      `toml:"burst"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    "http://localhost:3001",
			TimeoutSec: 10,
		},
		Ledger: LedgerConfig{
			DefaultCurrency: "IDR",
			Grouping:        "local",
			DayOrder:        "newest",
		},
		Appearance: AppearanceConfig{
			Theme: "ledgr",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
		Daemon: DaemonConfig{
			Addr:           "127.0.0.1:8787",
			IntervalSec:    30,
			AllowedOrigins: []string{"http://localhost:3000"},
			RatePerSec:     10,
			Burst:          20,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ledgr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ledgr")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if present.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate returns every problem found in cfg, joined.
func (c Config) Validate() error {
	var problems []error

	if !ValidBaseURL(c.API.BaseURL) {
		problems = append(problems, fmt.Errorf("api.base_url %q must be an http(s) URL", c.API.BaseURL))
	}
	if c.API.TimeoutSec < 0 {
		problems = append(problems, errors.New("api.timeout_sec must not be negative"))
	}
	if !ValidCurrency(c.Ledger.DefaultCurrency) {
		problems = append(problems, fmt.Errorf("ledger.default_currency %q must be a 3-letter code", c.Ledger.DefaultCurrency))
	}
	switch strings.ToLower(c.Ledger.Grouping) {
	case "", "local", "server":
	default:
		problems = append(problems, fmt.Errorf("ledger.grouping %q must be local or server", c.Ledger.Grouping))
	}
	switch strings.ToLower(c.Ledger.DayOrder) {
	case "", "input", "newest", "oldest":
	default:
		problems = append(problems, fmt.Errorf("ledger.day_order %q must be input, newest or oldest", c.Ledger.DayOrder))
	}
	if c.TUI.RefreshIntervalSec < 0 || c.Daemon.IntervalSec < 0 {
		problems = append(problems, errors.New("refresh intervals must not be negative"))
	}

	return errors.Join(problems...)
}

// ValidBaseURL reports whether s is an absolute http(s) URL.
func ValidBaseURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidCurrency reports whether code looks like an ISO 4217 code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
