package cli

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/tabular"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "+IDR 100.00", FormatIncome("IDR", decimal.NewFromInt(100)))
	assert.Equal(t, "-IDR 40.50", FormatExpense("IDR", decimal.RequireFromString("-40.5")))
	assert.Equal(t, "-USD 3.00", FormatNet("USD", decimal.NewFromInt(-3)))
	assert.Equal(t, "+USD 0.00", FormatNet("USD", decimal.Zero))
}

func TestFormatSignedUsesFallbackCurrency(t *testing.T) {
	tx := model.Transaction{Type: model.Expense, Amount: decimal.NewFromInt(-45000)}
	assert.Equal(t, "-IDR 45000.00", FormatSigned(tx, "IDR"))

	tx = model.Transaction{Type: model.Income, Amount: decimal.NewFromInt(7), Currency: "EUR"}
	assert.Equal(t, "+EUR 7.00", FormatSigned(tx, "IDR"))
}

func TestFormatDates(t *testing.T) {
	d := civil.Date{Year: 2024, Month: time.March, Day: 1}
	assert.Equal(t, "01", FormatDayNumber(d))
	assert.Equal(t, "03/2024", FormatMonthYear(d))
	assert.Equal(t, "March 1, 2024", FormatLongDate(d))
	assert.Equal(t, "Fri", FormatDayOfWeek(d))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "never", FormatAge(time.Time{}, now))
	assert.Equal(t, "just now", FormatAge(now.Add(-2*time.Second), now))
	assert.Equal(t, "5m ago", FormatAge(now.Add(-5*time.Minute), now))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-2500, "-2,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestRenderView(t *testing.T) {
	accounts := []model.Account{{ID: "1", Name: "Cash"}, {ID: "2", Name: "Savings"}}
	cols := []tabular.Column[model.Account]{{Key: "name", Label: "Name"}}
	v := tabular.Build(cols, accounts, func(a model.Account) string { return a.ID }, nil)

	out := RenderView("Accounts", v, "")
	assert.Contains(t, out, "Savings")
	assert.Contains(t, out, "2 row(s) total")

	empty := tabular.Build(cols, nil, func(a model.Account) string { return a.ID }, nil)
	assert.Contains(t, RenderView("Accounts", empty, ""), tabular.EmptyMessage)
}

func TestRenderTableAlignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"x", "1"}, {"yy", "22"}},
		Aligns:  []tabular.Align{tabular.AlignLeft, tabular.AlignRight},
	})
	assert.Contains(t, out, "│ x  │  1 │")
	assert.Contains(t, out, "│ yy │ 22 │")
}
