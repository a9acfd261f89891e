package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/ledgerapi"
	"github.com/theirongolddev/ledgr/internal/model"
)

func serve(t *testing.T, s *Service) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func synced(t *testing.T) (*Service, *fakeRemote, *httptest.Server) {
	t.Helper()
	r := newFakeRemote()
	s := newTestService(r, nil)
	s.poll(context.Background())
	return s, r, serve(t, s)
}

func TestEndpointsBeforeFirstSync(t *testing.T) {
	s := newTestService(newFakeRemote(), nil)
	srv := serve(t, s)

	resp, err := http.Get(srv.URL + "/api/transactions")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Message)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

// The mirror speaks the ledger API, so the API client can read from it.
func TestMirrorServesLedgerAPI(t *testing.T) {
	_, r, srv := synced(t)
	client := ledgerapi.New(config.APIConfig{BaseURL: srv.URL, TimeoutSec: 5})
	ctx := context.Background()

	txs, err := client.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, len(r.txs))
	for i, tx := range txs {
		want := r.txs[i]
		assert.Equal(t, want.ID, tx.ID)
		assert.Equal(t, want.Description, tx.Description)
		assert.Equal(t, want.Timestamp, tx.Timestamp)
		assert.True(t, want.Amount.Equal(tx.Amount), "tx %s amount %s", tx.ID, tx.Amount)
	}

	days, err := client.DailyGroups(ctx)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-02", days[0].Date.String())
	assert.Equal(t, 2, days[1].Count)

	accounts, err := client.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.accounts, accounts)

	income, err := client.Categories(ctx, model.Income)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, "Salary", income[0].Name)

	all, err := client.Categories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCategoriesRejectsUnknownType(t *testing.T) {
	_, _, srv := synced(t)

	resp, err := http.Get(srv.URL + "/api/categories?type=transfer")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMirrorIsReadOnly(t *testing.T) {
	_, _, srv := synced(t)

	resp, err := http.Post(srv.URL+"/api/transactions", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	_, _, srv := synced(t)

	resp, err := http.Get(srv.URL + "/v1/status")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.Ready)
	assert.Equal(t, int64(1), st.PollCount)
	assert.Equal(t, 3, st.Summary.Transactions)
	assert.Equal(t, 60, st.PollIntervalSec)
	assert.Equal(t, "35", st.Summary.Net.String())
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := New(Config{AllowedOrigins: []string{"http://localhost:3000"}}, newFakeRemote(), nil)
	srv := serve(t, s)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimitedEndpoints(t *testing.T) {
	s := New(Config{RatePerSec: 0.001, Burst: 2}, newFakeRemote(), nil)
	srv := serve(t, s)

	codes := make([]int, 0, 3)
	for range 3 {
		resp, err := http.Get(srv.URL + "/v1/status")
		require.NoError(t, err)
		_ = resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health checks are not limited.
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type sseEvent struct {
	id, typ, data string
}

func readSSE(t *testing.T, rd *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return ev
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			ev.typ = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func openStream(t *testing.T, url, lastID string) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/stream", nil)
	require.NoError(t, err)
	if lastID != "" {
		req.Header.Set("Last-Event-ID", lastID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

func TestStreamSendsSnapshotThenDeltas(t *testing.T) {
	s, r, srv := synced(t)
	rd := openStream(t, srv.URL, "")

	first := readSSE(t, rd)
	assert.Equal(t, EventSnapshot, first.typ)
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(first.data), &ev))
	assert.Equal(t, 3, ev.Snapshot.Transactions)

	r.set(func(f *fakeRemote) { f.txs = f.txs[:1] })
	s.poll(context.Background())

	next := readSSE(t, rd)
	assert.Equal(t, EventDelta, next.typ)
	assert.Equal(t, "2", next.id)
	require.NoError(t, json.Unmarshal([]byte(next.data), &ev))
	assert.Equal(t, []string{"2", "3"}, ev.Delta.Removed)
}

func TestStreamReplaysAfterLastEventID(t *testing.T) {
	s, r, srv := synced(t)
	r.set(func(f *fakeRemote) { f.txs = f.txs[:2] })
	s.poll(context.Background())

	rd := openStream(t, srv.URL, "1")
	ev := readSSE(t, rd)
	assert.Equal(t, "2", ev.id)
	assert.Equal(t, EventDelta, ev.typ)
}
