package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ledgr/internal/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sample(t *testing.T, id, ts, amount string, typ model.TxType) model.Transaction {
	t.Helper()
	dt, err := model.ParseTimestamp(ts)
	require.NoError(t, err)
	return model.Transaction{
		ID:          id,
		Timestamp:   dt,
		Description: "desc " + id,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    model.Ref{ID: "c", Name: "Food"},
		Account:     model.Ref{ID: "a", Name: "Cash"},
		Currency:    "IDR",
	}
}

func TestEmptyCache(t *testing.T) {
	c := openTemp(t)

	txs, at, err := c.LoadTransactions()
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.True(t, at.IsZero())
}

func TestReplaceTransactionsKeepsOrder(t *testing.T) {
	c := openTemp(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := []model.Transaction{
		sample(t, "b", "2024-03-02T10:00:00", "-12.50", model.Expense),
		sample(t, "a", "2024-03-01T09:00:00", "100", model.Income),
	}
	require.NoError(t, c.ReplaceTransactions(first, at))

	got, fetchedAt, err := c.LoadTransactions()
	require.NoError(t, err)
	assert.True(t, fetchedAt.Equal(at))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "-12.5", got[0].Amount.String())
	assert.Equal(t, "2024-03-02T10:00:00", model.FormatTimestamp(got[0].Timestamp))
	assert.Equal(t, model.Ref{ID: "c", Name: "Food"}, got[0].Category)

	require.NoError(t, c.ReplaceTransactions(first[1:], at.Add(time.Hour)))
	got, _, err = c.LoadTransactions()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLookupSnapshots(t *testing.T) {
	c := openTemp(t)
	at := time.Now()

	accounts := []model.Account{{ID: "1", Name: "Cash", GroupID: "2", UserID: "9"}}
	require.NoError(t, c.ReplaceAccounts(accounts, at))
	gotAccounts, _, err := c.LoadAccounts()
	require.NoError(t, err)
	assert.Equal(t, accounts, gotAccounts)

	income := []model.Category{{ID: "s", Name: "Salary", Type: model.Income}}
	expense := []model.Category{{ID: "f", Name: "Food", Type: model.Expense}}
	require.NoError(t, c.ReplaceCategories(model.Income, income, at))
	require.NoError(t, c.ReplaceCategories(model.Expense, expense, at))

	gotIncome, fetchedAt, err := c.LoadCategories(model.Income)
	require.NoError(t, err)
	assert.Equal(t, income, gotIncome)
	assert.False(t, fetchedAt.IsZero())
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.ReplaceTransactions([]model.Transaction{
		sample(t, "x", "2024-03-01T09:00:00", "5", model.Income),
	}, time.Now()))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()
	txs, _, err := c.LoadTransactions()
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
