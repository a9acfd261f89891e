package ledgerapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/edit"
	"github.com/theirongolddev/ledgr/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.APIConfig{BaseURL: srv.URL + "/", TimeoutSec: 2})
}

func TestTransactions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/transactions", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, `{"success":true,"count":2,"data":[
			{"id":"a1","date":"2024-03-01T09:15:00","description":"Salary","amount":2500000,
			 "category_id":"c1","category_name":"Salary","account_id":3,"account_name":"BCA","type":"income","currency":"IDR"},
			{"id":"a2","date":"2024-03-01T12:00:00","description":"Lunch","amount":45000,
			 "category_id":"c2","category_name":"Food","account_id":"4","account_name":"Cash","type":"expense","currency":"IDR"}
		]}`)
	})

	txs, err := c.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "3", txs[0].Account.ID)
	assert.Equal(t, "2500000", txs[0].Amount.String())
	assert.Equal(t, "-45000", txs[1].Amount.String(), "expense re-signed")
	assert.Equal(t, "4", txs[1].Account.ID)
	assert.Equal(t, "09:15", txs[0].Field("time"))
}

func TestDailyGroups(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/transactions/daily", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":[{
			"date":"2024-03-01","total_income":100,"total_expense":-40,"net_total":60,"transaction_count":2,
			"transactions":[
				{"id":"1","date":"2024-03-01T09:00:00","amount":100,"type":"income","category_id":"c","account_id":"a"},
				{"id":"2","date":"2024-03-01T10:00:00","amount":-40,"type":"expense","category_id":"c","account_id":"a"}
			]}]}`)
	})

	groups, err := c.DailyGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "2024-03-01", g.Date.String())
	assert.Equal(t, "40", g.TotalExpense.String())
	assert.Equal(t, "60", g.NetTotal.String())
	assert.Equal(t, 2, g.Count)
	assert.Len(t, g.Transactions, 2)
}

func TestCategoriesSendsType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "income", r.URL.Query().Get("type"))
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"name":"Salary"}]}`)
	})

	cats, err := c.Categories(context.Background(), model.Income)
	require.NoError(t, err)
	assert.Equal(t, []model.Category{{ID: "1", Name: "Salary", Type: model.Income}}, cats)
}

func TestProtocolFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"database unavailable"}`)
	})

	_, err := c.Accounts(context.Background())
	require.ErrorIs(t, err, ErrProtocol)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestStatusFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"no such transaction"}`)
	})

	err := c.Delete(context.Background(), "x9")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "no such transaction", se.Message)
	assert.True(t, IsNotFound(err))
}

func TestSaveCreateAndUpdate(t *testing.T) {
	var methods, paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		paths = append(paths, r.URL.Path)

		var body Transaction
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-03-01T14:05:00", body.Date)
		assert.Equal(t, "-50", body.Amount.String())

		if r.Method == http.MethodPost {
			assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
			body.ID = "new-1"
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": body})
			return
		}
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusNoContent)
	})

	ts, err := model.ParseTimestamp("2024-03-01T14:05:00")
	require.NoError(t, err)
	tx := model.Transaction{
		Timestamp: ts,
		Amount:    decimal.NewFromInt(-50),
		Type:      model.Expense,
		Category:  model.Ref{ID: "c"},
		Account:   model.Ref{ID: "a"},
	}

	saved, err := c.Save(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "new-1", saved.ID)

	again, err := c.Save(context.Background(), saved)
	require.NoError(t, err)
	assert.Equal(t, "new-1", again.ID)

	assert.Equal(t, []string{http.MethodPost, http.MethodPut}, methods)
	assert.Equal(t, []string{"/api/transactions", "/api/transactions/new-1"}, paths)
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/accounts":
			_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"name":"Cash","account_group_id":2,"user_id":9}]}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	s := edit.New(nil, "IDR")
	fetches := s.OpenCreate()
	for _, f := range fetches {
		require.True(t, s.Resolve(c.Lookup(context.Background(), f)))
	}

	snap := s.Snapshot()
	assert.Equal(t, edit.Editing, snap.State)
	assert.Equal(t, []model.Account{{ID: "1", Name: "Cash", GroupID: "2", UserID: "9"}}, snap.Accounts)
	assert.True(t, snap.CategoriesFailed)
}
