// Package daemon provides the long-running mirror of the remote ledger. It
// polls the ledger API, keeps the last good copy in memory and in the local
// store, and serves it back over the same read endpoints plus status and
// event feeds.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/pipeline"
)

const (
	defaultAddr     = "127.0.0.1:8787"
	defaultInterval = 30 * time.Second
	minInterval     = 5 * time.Second
	pollTimeout     = 30 * time.Second
)

// Remote is the ledger API as the mirror reads it.
type Remote interface {
	Transactions(ctx context.Context) ([]model.Transaction, error)
	Accounts(ctx context.Context) ([]model.Account, error)
	Categories(ctx context.Context, typ model.TxType) ([]model.Category, error)
}

// Store persists the mirror between runs. *store.Cache implements it.
type Store interface {
	ReplaceTransactions(txs []model.Transaction, fetchedAt time.Time) error
	LoadTransactions() ([]model.Transaction, time.Time, error)
	ReplaceAccounts(accounts []model.Account, fetchedAt time.Time) error
	LoadAccounts() ([]model.Account, time.Time, error)
	ReplaceCategories(typ model.TxType, cats []model.Category, fetchedAt time.Time) error
	LoadCategories(typ model.TxType) ([]model.Category, time.Time, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr           string
	Interval       time.Duration
	AllowedOrigins []string
	RatePerSec     float64
	Burst          int
	EventsBuffer   int
}

// mirror is one complete copy of the remote ledger. It is never mutated
// after it is installed, so handlers may read it without holding the lock.
type mirror struct {
	transactions []model.Transaction
	days         []model.DayGroup // newest first
	accounts     []model.Account
	income       []model.Category
	expense      []model.Category
	fetchedAt    time.Time
	stale        bool // loaded from the store and not yet refreshed
}

func (m *mirror) categories(typ model.TxType) []model.Category {
	switch typ {
	case model.Income:
		return m.income
	case model.Expense:
		return m.expense
	}
	all := make([]model.Category, 0, len(m.income)+len(m.expense))
	return append(append(all, m.income...), m.expense...)
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	FetchedAt       time.Time `json:"fetched_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Ready           bool      `json:"ready"`
	Stale           bool      `json:"stale"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	remote  Remote
	store   Store
	limiter *rateLimiter
	log     zerolog.Logger
	now     func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	data        *mirror
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon mirroring remote. st may be nil to keep the mirror
// in memory only.
func New(cfg Config, remote Remote, st Store) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	cfg.Interval = max(cfg.Interval, minInterval)
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 10
	}
	if cfg.Burst < 1 {
		cfg.Burst = 20
	}

	return &Service{
		cfg:       cfg,
		remote:    remote,
		store:     st,
		limiter:   newRateLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		log:       zerolog.Nop(),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves the HTTP API and polls the remote until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.log = logger.FromContext(ctx).With().Str("component", "daemon").Logger()
	s.seed()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Request contexts end with ctx so open streams let Shutdown finish.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon started")

	s.poll(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info().Msg("daemon stopping")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.poll(ctx)
			s.limiter.sweep(s.now())
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// seed installs the stored mirror so the API answers before the first poll.
func (s *Service) seed() {
	if s.store == nil {
		return
	}
	txs, at, err := s.store.LoadTransactions()
	if err != nil || at.IsZero() {
		if err != nil {
			s.log.Warn().Err(err).Msg("reading stored mirror")
		}
		return
	}

	m := &mirror{transactions: txs, fetchedAt: at, stale: true}
	m.days = pipeline.SortDays(pipeline.GroupByDay(txs), pipeline.OrderNewest)
	m.accounts, _, _ = s.store.LoadAccounts()
	m.income, _, _ = s.store.LoadCategories(model.Income)
	m.expense, _, _ = s.store.LoadCategories(model.Expense)

	s.mu.Lock()
	if s.data == nil {
		s.data = m
		s.snapshot = snapshotOf(m)
	}
	s.mu.Unlock()
	s.log.Info().Int("transactions", len(txs)).Time("fetched_at", at).Msg("seeded from store")
}

func (s *Service) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()

	start := s.now()
	m, err := fetchMirror(ctx, s.remote)
	now := s.now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("poll failed")
		return
	}
	m.fetchedAt = now

	s.persist(m)
	s.install(m)
	s.log.Debug().Int("transactions", len(m.transactions)).Dur("took", now.Sub(start)).Msg("poll done")
}

// fetchMirror reads every resource of the remote concurrently.
func fetchMirror(ctx context.Context, r Remote) (*mirror, error) {
	m := &mirror{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.transactions, err = r.Transactions(gctx)
		return err
	})
	g.Go(func() (err error) {
		m.accounts, err = r.Accounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		m.income, err = r.Categories(gctx, model.Income)
		return err
	})
	g.Go(func() (err error) {
		m.expense, err = r.Categories(gctx, model.Expense)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.days = pipeline.SortDays(pipeline.GroupByDay(m.transactions), pipeline.OrderNewest)
	return m, nil
}

func (s *Service) persist(m *mirror) {
	if s.store == nil {
		return
	}
	errs := []error{
		s.store.ReplaceTransactions(m.transactions, m.fetchedAt),
		s.store.ReplaceAccounts(m.accounts, m.fetchedAt),
		s.store.ReplaceCategories(model.Income, m.income, m.fetchedAt),
		s.store.ReplaceCategories(model.Expense, m.expense, m.fetchedAt),
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Warn().Err(err).Msg("persisting mirror")
	}
}

// install makes m the served mirror and publishes what changed.
func (s *Service) install(m *mirror) {
	snap := snapshotOf(m)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.data
	s.data = m
	s.snapshot = snap
	s.lastPollAt = m.fetchedAt
	s.pollCount++
	s.lastError = ""

	if prev == nil {
		ev = Event{Type: EventSnapshot, Snapshot: snap}
		publish = true
	} else if delta := diffMirrors(prev, m); !delta.isZero() {
		ev = Event{Type: EventDelta, Snapshot: snap, Delta: delta}
		publish = true
	}
	if publish {
		s.nextEventID++
		ev.ID = s.nextEventID
		ev.Timestamp = m.fetchedAt
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) current() *mirror {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Ready:           s.data != nil,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.data != nil {
		st.FetchedAt = s.data.fetchedAt
		st.Stale = s.data.stale
	}
	return st
}
