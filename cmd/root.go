// Package cmd implements the ledgr CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/ledgerapi"
	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/pipeline"
	"github.com/theirongolddev/ledgr/internal/store"
	"github.com/theirongolddev/ledgr/internal/tui/theme"
)

var (
	flagAPI      string
	flagDays     int
	flagAccount  string
	flagCategory string
	flagType     string
	flagSearch   string
	flagNoCache  bool
	flagQuiet    bool
	flagOrder    string
)

// appCfg is the loaded configuration with flag overrides applied.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "ledgr",
	Short:             "Terminal ledger viewer and editor",
	Long:              "Browse, add and edit the transactions of a ledger API from the terminal.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = runDays

	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "Ledger API base URL (overrides config and LEDGR_API_URL)")
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Only the last N days (0 = everything, default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagAccount, "account", "a", "", "Filter to account (id or name substring)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category (id or name substring)")
	rootCmd.PersistentFlags().StringVarP(&flagType, "type", "t", "", "Filter to income or expense")
	rootCmd.PersistentFlags().StringVarP(&flagSearch, "search", "s", "", "Filter descriptions (case-insensitive substring)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite snapshot")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagOrder, "order", "", "Day order: newest, oldest or input (default from config)")
}

// prepare loads .env and the config file, applies flag overrides and puts a
// stderr logger in the command context.
func prepare(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagAPI != "" {
		cfg.API.BaseURL = flagAPI
	}
	appCfg = cfg
	theme.SetActive(cfg.Appearance.Theme)

	log := logger.Console(cfg.Log.Level)
	if flagQuiet {
		log = log.Level(zerolog.ErrorLevel)
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}

// newClient validates the configuration and returns an API client.
func newClient() (*ledgerapi.Client, error) {
	if err := appCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (run `ledgr setup` or `ledgr config`):\n%w", err)
	}
	return ledgerapi.New(appCfg.API), nil
}

func dayOrder() (pipeline.DayOrder, error) {
	if flagOrder != "" {
		return pipeline.ParseDayOrder(flagOrder)
	}
	return pipeline.ParseDayOrder(appCfg.Ledger.DayOrder)
}

func windowDays() int {
	if rootCmd.PersistentFlags().Changed("days") {
		return flagDays
	}
	return appCfg.Ledger.DefaultDays
}

// loadLedger is the shared data loading path used by the listing commands.
// It falls back to the SQLite snapshot when the API is unreachable.
func loadLedger(ctx context.Context, client *ledgerapi.Client) (*pipeline.LoadResult, error) {
	order, err := dayOrder()
	if err != nil {
		return nil, err
	}
	grouping, err := pipeline.ParseGrouping(appCfg.Ledger.Grouping)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Fetching transactions from %s...\n", client.BaseURL())
	}

	var cache pipeline.Cache
	if !flagNoCache {
		c, err := store.Open(pipeline.CachePath())
		if err != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Msg("cache unavailable")
		} else {
			defer func() { _ = c.Close() }()
			cache = c
		}
	}

	res, err := pipeline.Load(ctx, client, cache, pipeline.LoadOptions{Grouping: grouping, Order: order})
	if err != nil {
		if res == nil {
			return nil, err
		}
		fmt.Fprint(os.Stderr, cli.RenderError(fmt.Errorf("%w (showing cached data from %s)",
			err, cli.FormatAge(res.FetchedAt, time.Now()))))
	}
	return res, nil
}

// applyFilters narrows the loaded ledger by the persistent filter flags and
// returns the days in the requested order.
func applyFilters(res *pipeline.LoadResult) ([]model.DayGroup, error) {
	order, err := dayOrder()
	if err != nil {
		return nil, err
	}

	days := windowDays()
	if days <= 0 && flagAccount == "" && flagCategory == "" && flagType == "" && flagSearch == "" {
		return pipeline.SortDays(res.Days, order), nil
	}

	var since civil.Date
	if days > 0 {
		since = civil.DateOf(time.Now()).AddDays(-(days - 1))
	}
	txs := pipeline.FilterByDateRange(res.Transactions, since, civil.Date{})
	txs = pipeline.FilterByAccount(txs, flagAccount)
	txs = pipeline.FilterByCategory(txs, flagCategory)
	if flagType != "" {
		typ, err := model.ParseTxType(flagType)
		if err != nil {
			return nil, err
		}
		txs = pipeline.FilterByType(txs, typ)
	}
	txs = pipeline.FilterByText(txs, flagSearch)
	return pipeline.SortDays(pipeline.GroupByDay(txs), order), nil
}

func periodLabel() string {
	if d := windowDays(); d > 0 {
		return fmt.Sprintf("Last %dd", d)
	}
	return "All time"
}
