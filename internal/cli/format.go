// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgr/internal/model"
)

// FormatMoney formats a magnitude with its currency code, e.g. "IDR 45000.00".
func FormatMoney(currency string, amount decimal.Decimal) string {
	return currency + " " + amount.Abs().StringFixed(2)
}

// FormatIncome formats an income total as "+CUR x.xx".
func FormatIncome(currency string, amount decimal.Decimal) string {
	return "+" + FormatMoney(currency, amount)
}

// FormatExpense formats an expense total as "-CUR x.xx".
func FormatExpense(currency string, amount decimal.Decimal) string {
	return "-" + FormatMoney(currency, amount)
}

// FormatNet formats a signed total.
func FormatNet(currency string, amount decimal.Decimal) string {
	if amount.Sign() < 0 {
		return FormatExpense(currency, amount)
	}
	return FormatIncome(currency, amount)
}

// FormatSigned formats a transaction amount with the sign of its type.
func FormatSigned(tx model.Transaction, fallbackCurrency string) string {
	cur := tx.Currency
	if cur == "" {
		cur = fallbackCurrency
	}
	if tx.Type == model.Income {
		return FormatIncome(cur, tx.Amount)
	}
	return FormatExpense(cur, tx.Amount)
}

// FormatDayNumber returns the zero-padded day of month.
func FormatDayNumber(d civil.Date) string {
	return fmt.Sprintf("%02d", d.Day)
}

// FormatMonthYear returns "MM/YYYY".
func FormatMonthYear(d civil.Date) string {
	return fmt.Sprintf("%02d/%d", int(d.Month), d.Year)
}

// FormatLongDate returns e.g. "March 1, 2024".
func FormatLongDate(d civil.Date) string {
	return d.In(time.UTC).Format("January 2, 2006")
}

// FormatDayOfWeek returns a 3-letter day abbreviation for a date.
func FormatDayOfWeek(d civil.Date) string {
	return d.In(time.UTC).Weekday().String()[:3]
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatAge describes how long ago t was, e.g. "5m ago".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int64(now.Sub(t).Seconds())
	if secs < 5 {
		return "just now"
	}
	return FormatDuration(secs) + " ago"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatRowCount returns the table footer, e.g. "3 row(s) total".
func FormatRowCount(n int) string {
	return FormatNumber(int64(n)) + " row(s) total"
}
