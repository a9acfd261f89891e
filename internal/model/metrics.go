package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// DayGroup holds the transactions of a single calendar day and their totals.
type DayGroup struct {
	Date         civil.Date
	Transactions []Transaction
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal // sum of absolute expense amounts
	NetTotal     decimal.Decimal
	Count        int
}

// Currency returns the display currency for the day: the first transaction's
// currency, or fallback when the day is empty or the field is blank.
func (g DayGroup) Currency(fallback string) string {
	if len(g.Transactions) > 0 && g.Transactions[0].Currency != "" {
		return g.Transactions[0].Currency
	}
	return fallback
}

// Totals holds income/expense totals across a period.
type Totals struct {
	Days         int
	Transactions int
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Net          decimal.Decimal
}
