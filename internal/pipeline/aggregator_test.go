package pipeline

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ledgr/internal/model"
)

func tx(id, ts, amount string, typ model.TxType) model.Transaction {
	dt, err := model.ParseTimestamp(ts)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		ID:        id,
		Timestamp: dt,
		Amount:    decimal.RequireFromString(amount),
		Type:      typ,
		Currency:  "IDR",
	}
}

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ids(txs []model.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestGroupByDayEmpty(t *testing.T) {
	groups := GroupByDay(nil)
	require.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestGroupByDaySameDate(t *testing.T) {
	groups := GroupByDay([]model.Transaction{
		tx("a", "2024-03-01T09:00:00", "100", model.Income),
		tx("b", "2024-03-01T18:30:00", "-40", model.Expense),
	})

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, day("2024-03-01"), g.Date)
	assert.Equal(t, 2, g.Count)
	assert.True(t, g.TotalIncome.Equal(decimal.NewFromInt(100)), "income %s", g.TotalIncome)
	assert.True(t, g.TotalExpense.Equal(decimal.NewFromInt(40)), "expense %s", g.TotalExpense)
	assert.True(t, g.NetTotal.Equal(decimal.NewFromInt(60)), "net %s", g.NetTotal)
}

func TestGroupByDayPartitionsInput(t *testing.T) {
	input := []model.Transaction{
		tx("1", "2024-03-02T10:00:00", "-12.50", model.Expense),
		tx("2", "2024-03-01T23:59:00", "250000", model.Income),
		tx("3", "2024-03-02T08:00:00", "-3", model.Expense),
		tx("4", "2024-03-03T00:00:00", "7.25", model.Income),
		tx("5", "2024-03-01T00:01:00", "-0.75", model.Expense),
		tx("6", "2024-03-02T23:00:00", "1", model.Income),
	}

	groups := GroupByDay(input)

	seen := map[string]int{}
	total := 0
	for _, g := range groups {
		assert.Equal(t, len(g.Transactions), g.Count)
		assert.True(t, g.NetTotal.Equal(g.TotalIncome.Sub(g.TotalExpense)),
			"%s: net %s != %s - %s", g.Date, g.NetTotal, g.TotalIncome, g.TotalExpense)
		for _, tr := range g.Transactions {
			assert.Equal(t, g.Date, tr.Date(), "transaction %s in wrong group", tr.ID)
			seen[tr.ID]++
			total++
		}
	}
	assert.Equal(t, len(input), total)
	for _, in := range input {
		assert.Equal(t, 1, seen[in.ID], "transaction %s", in.ID)
	}
}

func TestGroupByDayKeepsInputOrder(t *testing.T) {
	groups := GroupByDay([]model.Transaction{
		tx("late", "2024-03-02T22:00:00", "-1", model.Expense),
		tx("old", "2024-03-01T10:00:00", "-1", model.Expense),
		tx("early", "2024-03-02T06:00:00", "-1", model.Expense),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, day("2024-03-02"), groups[0].Date, "first-occurrence order")
	assert.Equal(t, day("2024-03-01"), groups[1].Date)
	assert.Equal(t, []string{"late", "early"}, ids(groups[0].Transactions), "no re-sort by time")
}

func TestGroupByDayDeterministic(t *testing.T) {
	input := []model.Transaction{
		tx("1", "2024-03-02T10:00:00", "-12.50", model.Expense),
		tx("2", "2024-03-01T23:59:00", "250", model.Income),
	}
	assert.Equal(t, GroupByDay(input), GroupByDay(input))
}

func TestSortDays(t *testing.T) {
	groups := GroupByDay([]model.Transaction{
		tx("b", "2024-03-02T10:00:00", "-1", model.Expense),
		tx("a", "2024-03-01T10:00:00", "-1", model.Expense),
		tx("c", "2024-03-03T10:00:00", "-1", model.Expense),
	})

	dates := func(gs []model.DayGroup) []string {
		out := make([]string, len(gs))
		for i, g := range gs {
			out[i] = g.Date.String()
		}
		return out
	}

	assert.Equal(t, []string{"2024-03-03", "2024-03-02", "2024-03-01"}, dates(SortDays(groups, OrderNewest)))
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, dates(SortDays(groups, OrderOldest)))
	assert.Equal(t, []string{"2024-03-02", "2024-03-01", "2024-03-03"}, dates(SortDays(groups, OrderInput)))
	assert.Equal(t, []string{"2024-03-02", "2024-03-01", "2024-03-03"}, dates(groups), "input untouched")
}

func TestParseDayOrder(t *testing.T) {
	o, err := ParseDayOrder("Newest")
	require.NoError(t, err)
	assert.Equal(t, OrderNewest, o)

	o, err = ParseDayOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderInput, o)

	_, err = ParseDayOrder("random")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	totals := Summarize(GroupByDay([]model.Transaction{
		tx("1", "2024-03-01T10:00:00", "100", model.Income),
		tx("2", "2024-03-01T11:00:00", "-40", model.Expense),
		tx("3", "2024-03-02T11:00:00", "-70", model.Expense),
	}))

	assert.Equal(t, 2, totals.Days)
	assert.Equal(t, 3, totals.Transactions)
	assert.Equal(t, "100.00", totals.Income.StringFixed(2))
	assert.Equal(t, "110.00", totals.Expense.StringFixed(2))
	assert.Equal(t, "-10.00", totals.Net.StringFixed(2))
}

func TestFilters(t *testing.T) {
	a := tx("1", "2024-03-01T10:00:00", "100", model.Income)
	a.Description = "Monthly salary"
	a.Account = model.Ref{ID: "7", Name: "BCA Checking"}
	a.Category = model.Ref{ID: "c1", Name: "Salary"}

	b := tx("2", "2024-03-05T10:00:00", "-40", model.Expense)
	b.Description = "Groceries"
	b.Account = model.Ref{ID: "8", Name: "Cash"}
	b.Category = model.Ref{ID: "c2", Name: "Food"}

	all := []model.Transaction{a, b}

	assert.Equal(t, []string{"2"}, ids(FilterByDateRange(all, day("2024-03-02"), civil.Date{})))
	assert.Equal(t, []string{"1"}, ids(FilterByDateRange(all, civil.Date{}, day("2024-03-01"))))
	assert.Len(t, FilterByDateRange(all, civil.Date{}, civil.Date{}), 2)

	assert.Equal(t, []string{"1"}, ids(FilterByAccount(all, "bca")))
	assert.Equal(t, []string{"2"}, ids(FilterByAccount(all, "8")))
	assert.Equal(t, []string{"2"}, ids(FilterByCategory(all, "food")))
	assert.Equal(t, []string{"1"}, ids(FilterByType(all, model.Income)))
	assert.Equal(t, []string{"2"}, ids(FilterByText(all, "GROC")))
	assert.Len(t, FilterByText(all, ""), 2)
}
