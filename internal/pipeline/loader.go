package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/model"
)

// Grouping selects which remote read contract the loader uses.
type Grouping string

// Supported groupings.
const (
	// GroupLocal fetches the flat list and groups it with GroupByDay.
	GroupLocal Grouping = "local"
	// GroupServer fetches pre-grouped days from the server.
	GroupServer Grouping = "server"
)

// ParseGrouping validates a configured grouping mode.
func ParseGrouping(s string) (Grouping, error) {
	switch g := Grouping(strings.ToLower(strings.TrimSpace(s))); g {
	case GroupLocal, GroupServer:
		return g, nil
	case "":
		return GroupLocal, nil
	}
	return "", fmt.Errorf("unknown grouping %q (want local or server)", s)
}

// Source is the remote ledger read side.
type Source interface {
	Transactions(ctx context.Context) ([]model.Transaction, error)
	DailyGroups(ctx context.Context) ([]model.DayGroup, error)
}

// Cache holds the snapshot of the last good fetch.
type Cache interface {
	ReplaceTransactions(txs []model.Transaction, fetchedAt time.Time) error
	LoadTransactions() ([]model.Transaction, time.Time, error)
}

// LoadOptions controls a Load call.
type LoadOptions struct {
	Grouping Grouping
	Order    DayOrder
}

// LoadResult holds the output of the loading pipeline.
type LoadResult struct {
	Transactions []model.Transaction
	Days         []model.DayGroup
	FetchedAt    time.Time
	Stale        bool // served from the cache after a failed fetch
}

// Load fetches the ledger and groups it into days. On success the cache
// snapshot is replaced. When the fetch fails and a snapshot exists, Load
// returns the snapshot marked Stale together with the fetch error; callers
// should show both. cache may be nil.
func Load(ctx context.Context, src Source, cache Cache, opts LoadOptions) (*LoadResult, error) {
	log := logger.FromContext(ctx)

	txs, days, err := fetch(ctx, src, opts.Grouping)
	if err == nil {
		now := time.Now()
		if cache != nil {
			if cerr := cache.ReplaceTransactions(txs, now); cerr != nil {
				log.Warn().Err(cerr).Msg("saving cache snapshot")
			}
		}
		return &LoadResult{
			Transactions: txs,
			Days:         SortDays(days, opts.Order),
			FetchedAt:    now,
		}, nil
	}

	log.Error().Err(err).Str("grouping", string(opts.Grouping)).Msg("fetching transactions")
	if cache == nil {
		return nil, err
	}

	cached, fetchedAt, cerr := cache.LoadTransactions()
	if cerr != nil || fetchedAt.IsZero() {
		if cerr != nil {
			log.Warn().Err(cerr).Msg("reading cache snapshot")
		}
		return nil, err
	}

	log.Info().Int("transactions", len(cached)).Time("fetched_at", fetchedAt).Msg("serving cached snapshot")
	return &LoadResult{
		Transactions: cached,
		Days:         SortDays(GroupByDay(cached), opts.Order),
		FetchedAt:    fetchedAt,
		Stale:        true,
	}, err
}

func fetch(ctx context.Context, src Source, grouping Grouping) ([]model.Transaction, []model.DayGroup, error) {
	if grouping == GroupServer {
		days, err := src.DailyGroups(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching daily groups: %w", err)
		}
		return Flatten(days), days, nil
	}

	txs, err := src.Transactions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching transactions: %w", err)
	}
	return txs, GroupByDay(txs), nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ledgr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ledgr")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "ledger.db")
}

// LogPath returns the default log file path.
func LogPath() string {
	return filepath.Join(CacheDir(), "ledgr.log")
}
