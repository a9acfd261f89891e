// Package store provides a SQLite-backed snapshot of the last good fetch
// from the ledger API.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgr/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Snapshot keys in sync_state.
const (
	keyTransactions = "transactions"
	keyAccounts     = "accounts"
	keyCategories   = "categories:"
)

// Cache provides SQLite-backed ledger caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ReplaceTransactions swaps the cached transaction list for txs.
func (c *Cache) ReplaceTransactions(txs []model.Transaction, fetchedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM transactions"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO transactions
		(position, id, timestamp, day, description, amount, type,
		 category_id, category_name, account_id, account_name, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range txs {
		_, err := stmt.Exec(i, t.ID, model.FormatTimestamp(t.Timestamp), t.Date().String(),
			t.Description, t.Amount.String(), string(t.Type),
			t.Category.ID, t.Category.Name, t.Account.ID, t.Account.Name, t.Currency)
		if err != nil {
			return fmt.Errorf("caching transaction %s: %w", t.ID, err)
		}
	}

	if err := touch(tx, keyTransactions, fetchedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadTransactions returns the cached transactions in fetch order and when
// they were fetched. A zero time means nothing has been cached.
func (c *Cache) LoadTransactions() ([]model.Transaction, time.Time, error) {
	fetchedAt, err := c.FetchedAt(keyTransactions)
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := c.db.Query(`SELECT id, timestamp, description, amount, type,
		category_id, category_name, account_id, account_name, currency
		FROM transactions ORDER BY position`)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var (
			t               model.Transaction
			ts, amount, typ string
		)
		if err := rows.Scan(&t.ID, &ts, &t.Description, &amount, &typ,
			&t.Category.ID, &t.Category.Name, &t.Account.ID, &t.Account.Name, &t.Currency); err != nil {
			return nil, time.Time{}, err
		}
		if t.Timestamp, err = model.ParseTimestamp(ts); err != nil {
			return nil, time.Time{}, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, time.Time{}, fmt.Errorf("cached amount %q: %w", amount, err)
		}
		if t.Type, err = model.ParseTxType(typ); err != nil {
			return nil, time.Time{}, err
		}
		txs = append(txs, t)
	}
	return txs, fetchedAt, rows.Err()
}

// ReplaceAccounts swaps the cached account list.
func (c *Cache) ReplaceAccounts(accounts []model.Account, fetchedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM accounts"); err != nil {
		return err
	}
	for i, a := range accounts {
		_, err := tx.Exec(`INSERT INTO accounts (position, id, name, group_id, user_id)
			VALUES (?, ?, ?, ?, ?)`, i, a.ID, a.Name, a.GroupID, a.UserID)
		if err != nil {
			return err
		}
	}
	if err := touch(tx, keyAccounts, fetchedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadAccounts returns the cached accounts.
func (c *Cache) LoadAccounts() ([]model.Account, time.Time, error) {
	fetchedAt, err := c.FetchedAt(keyAccounts)
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := c.db.Query("SELECT id, name, group_id, user_id FROM accounts ORDER BY position")
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.GroupID, &a.UserID); err != nil {
			return nil, time.Time{}, err
		}
		accounts = append(accounts, a)
	}
	return accounts, fetchedAt, rows.Err()
}

// ReplaceCategories swaps the cached categories of one type.
func (c *Cache) ReplaceCategories(typ model.TxType, cats []model.Category, fetchedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM categories WHERE type = ?", string(typ)); err != nil {
		return err
	}
	for i, cat := range cats {
		_, err := tx.Exec(`INSERT INTO categories (type, position, id, name)
			VALUES (?, ?, ?, ?)`, string(typ), i, cat.ID, cat.Name)
		if err != nil {
			return err
		}
	}
	if err := touch(tx, keyCategories+string(typ), fetchedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadCategories returns the cached categories of one type.
func (c *Cache) LoadCategories(typ model.TxType) ([]model.Category, time.Time, error) {
	fetchedAt, err := c.FetchedAt(keyCategories + string(typ))
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := c.db.Query("SELECT id, name FROM categories WHERE type = ? ORDER BY position", string(typ))
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		cat := model.Category{Type: typ}
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, time.Time{}, err
		}
		cats = append(cats, cat)
	}
	return cats, fetchedAt, rows.Err()
}

// FetchedAt returns when a snapshot was last replaced, or zero if never.
func (c *Cache) FetchedAt(key string) (time.Time, error) {
	var raw string
	err := c.db.QueryRow("SELECT fetched_at FROM sync_state WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, raw)
}

func touch(tx *sql.Tx, key string, at time.Time) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO sync_state (key, fetched_at) VALUES (?, ?)`,
		key, at.UTC().Format(time.RFC3339Nano))
	return err
}
