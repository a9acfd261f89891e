package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ledgr/internal/model"
)

type fakeSource struct {
	txs  []model.Transaction
	days []model.DayGroup
	err  error
}

func (f *fakeSource) Transactions(context.Context) ([]model.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeSource) DailyGroups(context.Context) ([]model.DayGroup, error) {
	return f.days, f.err
}

type memCache struct {
	txs       []model.Transaction
	fetchedAt time.Time
	saves     int
}

func (m *memCache) ReplaceTransactions(txs []model.Transaction, at time.Time) error {
	m.txs = txs
	m.fetchedAt = at
	m.saves++
	return nil
}

func (m *memCache) LoadTransactions() ([]model.Transaction, time.Time, error) {
	return m.txs, m.fetchedAt, nil
}

func TestLoadLocalGroupsAndCaches(t *testing.T) {
	src := &fakeSource{txs: []model.Transaction{
		tx("1", "2024-03-01T10:00:00", "100", model.Income),
		tx("2", "2024-03-02T10:00:00", "-40", model.Expense),
	}}
	cache := &memCache{}

	res, err := Load(context.Background(), src, cache, LoadOptions{Grouping: GroupLocal, Order: OrderNewest})
	require.NoError(t, err)
	assert.False(t, res.Stale)
	require.Len(t, res.Days, 2)
	assert.Equal(t, day("2024-03-02"), res.Days[0].Date)
	assert.Equal(t, 1, cache.saves)
	assert.Len(t, cache.txs, 2)
}

func TestLoadServerGroupsFlattensForCache(t *testing.T) {
	groups := GroupByDay([]model.Transaction{
		tx("1", "2024-03-01T10:00:00", "100", model.Income),
		tx("2", "2024-03-01T11:00:00", "-40", model.Expense),
	})
	cache := &memCache{}

	res, err := Load(context.Background(), &fakeSource{days: groups}, cache, LoadOptions{Grouping: GroupServer})
	require.NoError(t, err)
	assert.Equal(t, groups, res.Days)
	assert.Equal(t, []string{"1", "2"}, ids(cache.txs))
}

func TestLoadFailureServesStaleSnapshot(t *testing.T) {
	fetchedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := &memCache{
		txs:       []model.Transaction{tx("old", "2024-02-28T10:00:00", "-5", model.Expense)},
		fetchedAt: fetchedAt,
	}
	boom := errors.New("connection refused")

	res, err := Load(context.Background(), &fakeSource{err: boom}, cache, LoadOptions{})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.True(t, res.Stale)
	assert.Equal(t, fetchedAt, res.FetchedAt)
	assert.Equal(t, []string{"old"}, ids(res.Transactions))
	assert.Zero(t, cache.saves, "prior data left untouched")
}

func TestLoadFailureWithoutSnapshot(t *testing.T) {
	boom := errors.New("boom")

	res, err := Load(context.Background(), &fakeSource{err: boom}, &memCache{}, LoadOptions{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)

	res, err = Load(context.Background(), &fakeSource{err: boom}, nil, LoadOptions{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
}

func TestParseGrouping(t *testing.T) {
	g, err := ParseGrouping("SERVER")
	require.NoError(t, err)
	assert.Equal(t, GroupServer, g)

	_, err = ParseGrouping("remote")
	assert.Error(t, err)
}
