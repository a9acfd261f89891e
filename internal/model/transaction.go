// Package model defines the canonical ledger records shared by every layer.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TxType is the direction of a transaction.
type TxType string

// Transaction types.
const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// ErrUnknownType is returned when a transaction type is neither income nor expense.
var ErrUnknownType = errors.New("model: unknown transaction type")

// ParseTxType converts a raw string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Sign returns +1 for income and -1 for expense.
func (t TxType) Sign() int {
	if t == Income {
		return 1
	}
	return -1
}

// Other returns the opposite type.
func (t TxType) Other() TxType {
	if t == Income {
		return Expense
	}
	return Income
}

// Label returns the capitalized type name for display.
func (t TxType) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	return string(t)
}

// Ref is a reference to a category or account with its denormalized display name.
type Ref struct {
	ID   string
	Name string
}

// IsZero reports whether no reference is selected.
func (r Ref) IsZero() bool { return r.ID == "" }

// Transaction is the canonical ledger record. The sign of Amount always
// matches Type: positive for income, negative for expense.
type Transaction struct {
	ID          string // empty until persisted
	Timestamp   civil.DateTime
	Description string
	Amount      decimal.Decimal
	Type        TxType
	Category    Ref
	Account     Ref
	Currency    string
}

// Persisted reports whether the record has a server-assigned identity.
func (t Transaction) Persisted() bool { return t.ID != "" }

// Date returns the calendar day of the transaction.
func (t Transaction) Date() civil.Date { return t.Timestamp.Date }

// Magnitude returns the absolute amount.
func (t Transaction) Magnitude() decimal.Decimal { return t.Amount.Abs() }

// WithType returns a copy with the given type and the amount re-signed to match.
func (t Transaction) WithType(typ TxType) Transaction {
	t.Type = typ
	t.Amount = SignedAmount(t.Amount.Abs(), typ)
	return t
}

// WithMagnitude returns a copy whose amount has the given magnitude, signed by Type.
func (t Transaction) WithMagnitude(m decimal.Decimal) Transaction {
	t.Amount = SignedAmount(m.Abs(), t.Type)
	return t
}

// SignedAmount applies the sign of typ to a magnitude.
func SignedAmount(magnitude decimal.Decimal, typ TxType) decimal.Decimal {
	if typ == Income {
		return magnitude
	}
	return magnitude.Neg()
}

// Field returns the default text form of a column key.
func (t Transaction) Field(key string) string {
	switch key {
	case "id":
		return t.ID
	case "date":
		return t.Timestamp.Date.String()
	case "time":
		return FormatClock(t.Timestamp.Time)
	case "timestamp":
		return FormatTimestamp(t.Timestamp)
	case "description":
		return t.Description
	case "amount":
		return t.Amount.StringFixed(2)
	case "type":
		return string(t.Type)
	case "category":
		return t.Category.Name
	case "category_id":
		return t.Category.ID
	case "account":
		return t.Account.Name
	case "account_id":
		return t.Account.ID
	case "currency":
		return t.Currency
	}
	return ""
}

const (
	timestampLayout = "2006-01-02T15:04:05"
	clockLayout     = "15:04"
)

// ParseTimestamp parses the timestamp encodings the ledger API is known to send.
// Zoned values keep their wall clock in the given offset.
func ParseTimestamp(s string) (civil.DateTime, error) {
	s = strings.TrimSpace(s)
	if dt, err := civil.ParseDateTime(s); err == nil {
		return dt, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return civil.DateTimeOf(t), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return civil.DateTimeOf(t), nil
	}
	if d, err := civil.ParseDate(s); err == nil {
		return civil.DateTime{Date: d}, nil
	}
	return civil.DateTime{}, fmt.Errorf("model: unrecognized timestamp %q", s)
}

// FormatTimestamp renders a timestamp as 2006-01-02T15:04:05.
func FormatTimestamp(dt civil.DateTime) string {
	return dt.In(time.UTC).Format(timestampLayout)
}

// ParseClock parses hour:minute text.
func ParseClock(s string) (civil.Time, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return civil.Time{}, fmt.Errorf("model: invalid time %q (want HH:MM)", s)
	}
	return civil.Time{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// FormatClock renders hour:minute, dropping seconds.
func FormatClock(t civil.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
