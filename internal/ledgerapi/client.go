// Package ledgerapi is the HTTP client for the remote ledger API. Wire shapes
// are converted to the model package at this boundary.
package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/ledgr/internal/config"
	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	userAgent      = "ledgr/1.0"
)

// ErrProtocol indicates a response body with success set to false.
var ErrProtocol = errors.New("ledgerapi: request unsuccessful")

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledgerapi: unexpected status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("ledgerapi: unexpected status %d", e.Code)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client talks to the ledger API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New creates a client for the configured API.
func New(cfg config.APIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Transactions returns the flat transaction list.
func (c *Client) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var ws []Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions", nil, &ws); err != nil {
		return nil, err
	}
	return transactionsToModel(ws)
}

// DailyGroups returns transactions pre-grouped by day on the server.
func (c *Client) DailyGroups(ctx context.Context) ([]model.DayGroup, error) {
	var ws []TransactionGroup
	if err := c.do(ctx, http.MethodGet, "/api/transactions/daily", nil, &ws); err != nil {
		return nil, err
	}
	groups := make([]model.DayGroup, 0, len(ws))
	for _, w := range ws {
		g, err := w.ToModel()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Accounts returns the account list.
func (c *Client) Accounts(ctx context.Context) ([]model.Account, error) {
	var ws []Account
	if err := c.do(ctx, http.MethodGet, "/api/accounts", nil, &ws); err != nil {
		return nil, err
	}
	accounts := make([]model.Account, len(ws))
	for i, w := range ws {
		accounts[i] = w.ToModel()
	}
	return accounts, nil
}

// Categories returns the categories for a transaction type. An empty type
// lists every category.
func (c *Client) Categories(ctx context.Context, typ model.TxType) ([]model.Category, error) {
	path := "/api/categories"
	if typ != "" {
		path += "?" + url.Values{"type": {string(typ)}}.Encode()
	}
	var ws []Category
	if err := c.do(ctx, http.MethodGet, path, nil, &ws); err != nil {
		return nil, err
	}
	cats := make([]model.Category, len(ws))
	for i, w := range ws {
		cats[i] = w.ToModel(typ)
	}
	return cats, nil
}

// Save creates tx when it has no id and updates it otherwise. It returns the
// record as stored by the server, or tx itself when the server echoes nothing.
func (c *Client) Save(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	method, path := http.MethodPost, "/api/transactions"
	if tx.Persisted() {
		method, path = http.MethodPut, "/api/transactions/"+url.PathEscape(tx.ID)
	}

	var saved *Transaction
	if err := c.do(ctx, method, path, FromModel(tx), &saved); err != nil {
		return model.Transaction{}, err
	}
	if saved == nil || saved.Date == "" {
		return tx, nil
	}
	return saved.ToModel()
}

// Delete removes a transaction.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
}

// do performs a request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ledgerapi: encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("ledgerapi: creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	log := logger.FromContext(ctx).With().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Logger()
	start := time.Now()

	//nolint:gosec // URL is built from configured base URL
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("request failed")
		return fmt.Errorf("ledgerapi: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("ledgerapi: reading response: %w", err)
	}
	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request done")

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Code: resp.StatusCode}
		if decodeErr == nil {
			se.Message = env.Message
		}
		return se
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		if out != nil && method == http.MethodGet {
			return fmt.Errorf("%w: empty response", ErrProtocol)
		}
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("ledgerapi: parsing response: %w", decodeErr)
	}
	if !env.Success {
		if env.Message != "" {
			return fmt.Errorf("%w: %s", ErrProtocol, env.Message)
		}
		return ErrProtocol
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("ledgerapi: parsing data: %w", err)
	}
	return nil
}
