// Package pipeline groups, filters and loads ledger transactions for display.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgr/internal/model"
)

// DayOrder selects how day groups are ordered for display.
type DayOrder string

// Supported day orders. OrderInput keeps first-occurrence order.
const (
	OrderInput  DayOrder = "input"
	OrderNewest DayOrder = "newest"
	OrderOldest DayOrder = "oldest"
)

// ParseDayOrder validates a configured day order.
func ParseDayOrder(s string) (DayOrder, error) {
	switch o := DayOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderInput, OrderNewest, OrderOldest:
		return o, nil
	case "":
		return OrderInput, nil
	}
	return "", fmt.Errorf("unknown day order %q (want input, newest or oldest)", s)
}

// GroupByDay partitions transactions into per-day groups with totals.
// Groups appear in first-occurrence order of their date and keep the input
// order of their transactions; nothing is re-sorted.
func GroupByDay(txs []model.Transaction) []model.DayGroup {
	groups := make([]model.DayGroup, 0)
	index := make(map[civil.Date]int)

	for _, tx := range txs {
		day := tx.Date()
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, model.DayGroup{
				Date:         day,
				TotalIncome:  decimal.Zero,
				TotalExpense: decimal.Zero,
			})
		}

		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)
		g.Count++
		switch tx.Type {
		case model.Income:
			g.TotalIncome = g.TotalIncome.Add(tx.Amount)
		case model.Expense:
			g.TotalExpense = g.TotalExpense.Add(tx.Amount.Abs())
		}
	}

	for i := range groups {
		groups[i].NetTotal = groups[i].TotalIncome.Sub(groups[i].TotalExpense)
	}
	return groups
}

// SortDays returns a copy of groups in the requested order. The sort is stable,
// so equal dates (pre-grouped input may repeat them) keep their relative order.
func SortDays(groups []model.DayGroup, order DayOrder) []model.DayGroup {
	out := make([]model.DayGroup, len(groups))
	copy(out, groups)

	switch order {
	case OrderNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Date.After(out[j].Date)
		})
	case OrderOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Date.Before(out[j].Date)
		})
	}
	return out
}

// Flatten returns the transactions of all groups in group order.
func Flatten(groups []model.DayGroup) []model.Transaction {
	var n int
	for _, g := range groups {
		n += len(g.Transactions)
	}
	txs := make([]model.Transaction, 0, n)
	for _, g := range groups {
		txs = append(txs, g.Transactions...)
	}
	return txs
}

// Summarize totals a set of day groups.
func Summarize(groups []model.DayGroup) model.Totals {
	t := model.Totals{
		Days:    len(groups),
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, g := range groups {
		t.Transactions += g.Count
		t.Income = t.Income.Add(g.TotalIncome)
		t.Expense = t.Expense.Add(g.TotalExpense)
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// FilterByDateRange returns transactions dated within [since, until].
// A zero bound is open.
func FilterByDateRange(txs []model.Transaction, since, until civil.Date) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txs
	}

	var result []model.Transaction
	for _, tx := range txs {
		d := tx.Date()
		if !since.IsZero() && d.Before(since) {
			continue
		}
		if !until.IsZero() && d.After(until) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

// FilterByAccount returns transactions whose account id equals the filter or
// whose account name contains it.
func FilterByAccount(txs []model.Transaction, account string) []model.Transaction {
	if account == "" {
		return txs
	}
	return filter(txs, func(tx model.Transaction) bool {
		return tx.Account.ID == account || containsIgnoreCase(tx.Account.Name, account)
	})
}

// FilterByCategory returns transactions whose category id equals the filter or
// whose category name contains it.
func FilterByCategory(txs []model.Transaction, category string) []model.Transaction {
	if category == "" {
		return txs
	}
	return filter(txs, func(tx model.Transaction) bool {
		return tx.Category.ID == category || containsIgnoreCase(tx.Category.Name, category)
	})
}

// FilterByType returns transactions of the given type. An empty type matches all.
func FilterByType(txs []model.Transaction, typ model.TxType) []model.Transaction {
	if typ == "" {
		return txs
	}
	return filter(txs, func(tx model.Transaction) bool { return tx.Type == typ })
}

// FilterByText returns transactions whose description contains the query.
func FilterByText(txs []model.Transaction, query string) []model.Transaction {
	if query == "" {
		return txs
	}
	return filter(txs, func(tx model.Transaction) bool {
		return containsIgnoreCase(tx.Description, query)
	})
}

func filter(txs []model.Transaction, keep func(model.Transaction) bool) []model.Transaction {
	var result []model.Transaction
	for _, tx := range txs {
		if keep(tx) {
			result = append(result, tx)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
