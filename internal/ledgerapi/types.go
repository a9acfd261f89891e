package ledgerapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Count   int             `json:"count,omitempty"`
}

// ID is an identifier the API may encode as a JSON number or string.
type ID string

// UnmarshalJSON accepts 7, "7" and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ledgerapi: id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Transaction is the flat wire shape of a transaction.
type Transaction struct {
	ID           ID          `json:"id,omitempty"`
	Date         string      `json:"date"`
	Description  string      `json:"description"`
	Amount       json.Number `json:"amount"`
	CategoryID   ID          `json:"category_id"`
	CategoryName string      `json:"category_name,omitempty"`
	AccountID    ID          `json:"account_id"`
	AccountName  string      `json:"account_name,omitempty"`
	Type         string      `json:"type"`
	Currency     string      `json:"currency,omitempty"`
}

// TransactionGroup is the pre-grouped wire shape of one day.
type TransactionGroup struct {
	Date             string        `json:"date"`
	TotalIncome      json.Number   `json:"total_income"`
	TotalExpense     json.Number   `json:"total_expense"`
	NetTotal         json.Number   `json:"net_total"`
	TransactionCount int           `json:"transaction_count"`
	Transactions     []Transaction `json:"transactions"`
}

// Account is the wire shape of an account.
type Account struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	AccountGroupID ID     `json:"account_group_id,omitempty"`
	UserID         ID     `json:"user_id,omitempty"`
}

// Category is the wire shape of a category.
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}
