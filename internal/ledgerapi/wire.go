package ledgerapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgr/internal/model"
)

// ToModel converts a wire transaction. The amount is re-signed from the type,
// so servers that send positive expense amounts are accepted.
func (w Transaction) ToModel() (model.Transaction, error) {
	typ, err := model.ParseTxType(w.Type)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", w.ID, err)
	}
	ts, err := model.ParseTimestamp(w.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", w.ID, err)
	}
	amount, err := parseDecimal(w.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: amount: %w", w.ID, err)
	}

	tx := model.Transaction{
		ID:          string(w.ID),
		Timestamp:   ts,
		Description: w.Description,
		Type:        typ,
		Category:    model.Ref{ID: string(w.CategoryID), Name: w.CategoryName},
		Account:     model.Ref{ID: string(w.AccountID), Name: w.AccountName},
		Currency:    w.Currency,
	}
	return tx.WithMagnitude(amount), nil
}

// FromModel converts a transaction to its wire shape.
func FromModel(tx model.Transaction) Transaction {
	return Transaction{
		ID:           ID(tx.ID),
		Date:         model.FormatTimestamp(tx.Timestamp),
		Description:  tx.Description,
		Amount:       json.Number(tx.Amount.String()),
		CategoryID:   ID(tx.Category.ID),
		CategoryName: tx.Category.Name,
		AccountID:    ID(tx.Account.ID),
		AccountName:  tx.Account.Name,
		Type:         string(tx.Type),
		Currency:     tx.Currency,
	}
}

func transactionsToModel(ws []Transaction) ([]model.Transaction, error) {
	txs := make([]model.Transaction, 0, len(ws))
	for _, w := range ws {
		tx, err := w.ToModel()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// ToModel converts a pre-grouped day. The income and expense totals are kept
// as sent, the expense as a magnitude. The net total is derived from them, so
// a server net_total that disagrees is ignored.
func (g TransactionGroup) ToModel() (model.DayGroup, error) {
	d, err := parseDay(g.Date)
	if err != nil {
		return model.DayGroup{}, err
	}
	txs, err := transactionsToModel(g.Transactions)
	if err != nil {
		return model.DayGroup{}, fmt.Errorf("day %s: %w", g.Date, err)
	}

	var totals [2]decimal.Decimal
	for i, n := range []json.Number{g.TotalIncome, g.TotalExpense} {
		if totals[i], err = parseDecimal(n); err != nil {
			return model.DayGroup{}, fmt.Errorf("day %s: totals: %w", g.Date, err)
		}
	}

	count := g.TransactionCount
	if count == 0 {
		count = len(txs)
	}
	income, expense := totals[0], totals[1].Abs()
	return model.DayGroup{
		Date:         d,
		Transactions: txs,
		TotalIncome:  income,
		TotalExpense: expense,
		NetTotal:     income.Sub(expense),
		Count:        count,
	}, nil
}

// GroupFromModel converts a day group to its wire shape.
func GroupFromModel(g model.DayGroup) TransactionGroup {
	ws := make([]Transaction, len(g.Transactions))
	for i, tx := range g.Transactions {
		ws[i] = FromModel(tx)
	}
	return TransactionGroup{
		Date:             g.Date.String(),
		TotalIncome:      json.Number(g.TotalIncome.String()),
		TotalExpense:     json.Number(g.TotalExpense.String()),
		NetTotal:         json.Number(g.NetTotal.String()),
		TransactionCount: g.Count,
		Transactions:     ws,
	}
}

// ToModel converts a wire account.
func (a Account) ToModel() model.Account {
	return model.Account{
		ID:      string(a.ID),
		Name:    a.Name,
		GroupID: string(a.AccountGroupID),
		UserID:  string(a.UserID),
	}
}

// AccountFromModel converts an account to its wire shape.
func AccountFromModel(a model.Account) Account {
	return Account{
		ID:             ID(a.ID),
		Name:           a.Name,
		AccountGroupID: ID(a.GroupID),
		UserID:         ID(a.UserID),
	}
}

// ToModel converts a wire category. A missing type falls back to scope, the
// type the list was requested for.
func (c Category) ToModel(scope model.TxType) model.Category {
	typ, err := model.ParseTxType(c.Type)
	if err != nil {
		typ = scope
	}
	return model.Category{ID: string(c.ID), Name: c.Name, Type: typ}
}

// CategoryFromModel converts a category to its wire shape.
func CategoryFromModel(c model.Category) Category {
	return Category{ID: ID(c.ID), Name: c.Name, Type: string(c.Type)}
}

func parseDecimal(n json.Number) (decimal.Decimal, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseDay accepts a bare date or a full timestamp.
func parseDay(s string) (civil.Date, error) {
	if d, err := civil.ParseDate(strings.TrimSpace(s)); err == nil {
		return d, nil
	}
	dt, err := model.ParseTimestamp(s)
	if err != nil {
		return civil.Date{}, err
	}
	return dt.Date, nil
}
