package ledgerapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var a Account
	require.NoError(t, json.Unmarshal([]byte(`{"id":12,"name":"Cash","account_group_id":"3","user_id":null}`), &a))
	assert.Equal(t, ID("12"), a.ID)
	assert.Equal(t, ID("3"), a.AccountGroupID)
	assert.Equal(t, ID(""), a.UserID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &a))
}

func TestTransactionRejectsUnknownType(t *testing.T) {
	w := Transaction{ID: "1", Date: "2024-03-01T10:00:00", Amount: "5", Type: "transfer"}
	_, err := w.ToModel()
	assert.Error(t, err)
}

func TestTransactionWireRoundTrip(t *testing.T) {
	w := Transaction{
		ID:           "t1",
		Date:         "2024-03-01T23:30:00+07:00",
		Description:  "Dinner",
		Amount:       "-120.50",
		CategoryID:   "c",
		CategoryName: "Food",
		AccountID:    "a",
		AccountName:  "Cash",
		Type:         "expense",
		Currency:     "IDR",
	}
	tx, err := w.ToModel()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", tx.Date().String(), "wall clock date kept")

	back := FromModel(tx)
	assert.Equal(t, "2024-03-01T23:30:00", back.Date)
	assert.Equal(t, "-120.5", back.Amount.String())
	assert.Equal(t, w.CategoryName, back.CategoryName)
}

func TestGroupNetIsDerivedFromTotals(t *testing.T) {
	g := TransactionGroup{
		Date:         "2024-03-01",
		TotalIncome:  "100",
		TotalExpense: "-40",
		NetTotal:     "999",
	}
	day, err := g.ToModel()
	require.NoError(t, err)
	assert.Equal(t, "40", day.TotalExpense.String())
	assert.Equal(t, "60", day.NetTotal.String())
	assert.True(t, day.NetTotal.Equal(day.TotalIncome.Sub(day.TotalExpense)))
}
