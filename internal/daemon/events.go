package daemon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/pipeline"
)

// Event types.
const (
	EventSnapshot = "snapshot"
	EventDelta    = "ledger_delta"
)

// Snapshot is a compact ledger state for status and event payloads.
type Snapshot struct {
	At           time.Time       `json:"at"`
	Transactions int             `json:"transactions"`
	Days         int             `json:"days"`
	Accounts     int             `json:"accounts"`
	Categories   int             `json:"categories"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
}

// Delta captures what changed between two polls.
type Delta struct {
	Transactions int             `json:"transactions"`
	Accounts     int             `json:"accounts"`
	Categories   int             `json:"categories"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Net          decimal.Decimal `json:"net"`
	Added        []string        `json:"added,omitempty"`
	Updated      []string        `json:"updated,omitempty"`
	Removed      []string        `json:"removed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.Transactions == 0 &&
		d.Accounts == 0 &&
		d.Categories == 0 &&
		d.Income.IsZero() &&
		d.Expense.IsZero() &&
		d.Net.IsZero() &&
		len(d.Added) == 0 &&
		len(d.Updated) == 0 &&
		len(d.Removed) == 0
}

// Event is emitted whenever the mirror changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

func snapshotOf(m *mirror) Snapshot {
	t := pipeline.Summarize(m.days)
	return Snapshot{
		At:           m.fetchedAt,
		Transactions: t.Transactions,
		Days:         t.Days,
		Accounts:     len(m.accounts),
		Categories:   len(m.income) + len(m.expense),
		Income:       t.Income,
		Expense:      t.Expense,
		Net:          t.Net,
	}
}

// diffMirrors compares two mirrors by transaction id and by totals.
func diffMirrors(prev, curr *mirror) Delta {
	before := make(map[string]model.Transaction, len(prev.transactions))
	for _, tx := range prev.transactions {
		before[tx.ID] = tx
	}

	var d Delta
	seen := make(map[string]bool, len(curr.transactions))
	for _, tx := range curr.transactions {
		seen[tx.ID] = true
		old, ok := before[tx.ID]
		switch {
		case !ok:
			d.Added = append(d.Added, tx.ID)
		case !sameTransaction(old, tx):
			d.Updated = append(d.Updated, tx.ID)
		}
	}
	for _, tx := range prev.transactions {
		if !seen[tx.ID] {
			d.Removed = append(d.Removed, tx.ID)
		}
	}

	ps, cs := snapshotOf(prev), snapshotOf(curr)
	d.Transactions = cs.Transactions - ps.Transactions
	d.Accounts = cs.Accounts - ps.Accounts
	d.Categories = cs.Categories - ps.Categories
	d.Income = cs.Income.Sub(ps.Income)
	d.Expense = cs.Expense.Sub(ps.Expense)
	d.Net = cs.Net.Sub(ps.Net)
	return d
}

func sameTransaction(a, b model.Transaction) bool {
	return a.ID == b.ID &&
		a.Timestamp == b.Timestamp &&
		a.Description == b.Description &&
		a.Type == b.Type &&
		a.Category == b.Category &&
		a.Account == b.Account &&
		a.Currency == b.Currency &&
		a.Amount.Equal(b.Amount)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// eventsAfter returns the buffered events with an id above after.
func (s *Service) eventsAfter(after int64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > after {
			out = append(out, ev)
		}
	}
	return out
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
