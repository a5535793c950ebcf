// Package store implements the local cache of the visible transaction
// window. The Ledger Service stays the source of truth; the cache is
// replaced wholesale on every refresh and only patched locally by the
// mutation coordinator between refreshes.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
	"github.com/RocketCaptain/BillPrepared/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ledgerSource is the slice of the remote ledger the store needs to
// refresh itself.
type ledgerSource interface {
	Balance(ctx context.Context) (float64, error)
	Transactions(ctx context.Context, start, end model.Date, forecastPeriod int) ([]model.Transaction, error)
}

const (
	metaBalance     = "balance"
	metaRefreshedAt = "refreshed_at"
	metaWindowStart = "window_start"
	metaWindowEnd   = "window_end"
)

var _ service.Store = (*SQLiteStore)(nil)

// SQLiteStore implements the cache using SQLite.
type SQLiteStore struct {
	db             *sql.DB
	ledger         ledgerSource
	now            func() time.Time
	dbPath         string
	forecastPeriod int
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the wall clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore opens (or creates) the cache database at dbPath. The
// forecast period controls how far past today Refresh fetches, in months.
func NewSQLiteStore(dbPath string, ledger ledgerSource, forecastPeriod int, opts ...Option) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: database path is required", common.ErrInvalidConfig)
	}
	if ledger == nil {
		return nil, fmt.Errorf("%w: ledger is required", common.ErrInvalidConfig)
	}
	if forecastPeriod < 1 {
		return nil, fmt.Errorf("%w: forecast period must be at least 1 month", common.ErrInvalidConfig)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{
		db:             db,
		ledger:         ledger,
		now:            time.Now,
		dbPath:         dbPath,
		forecastPeriod: forecastPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Refresh replaces the cached window wholesale with the ledger's current
// view. The window spans one month before today through the forecast
// period after today. Partial results are never committed.
func (s *SQLiteStore) Refresh(ctx context.Context) error {
	today := model.DateOf(s.now())
	start := today.AddMonths(-1)
	end := today.AddMonths(s.forecastPeriod)

	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch balance: %w", err)
	}

	txs, err := s.ledger.Transactions(ctx, start, end, s.forecastPeriod)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = dbTx.Rollback() }()

	if _, err := dbTx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("failed to clear cached window: %w", err)
	}

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, description, amount, date, label, is_recurring, recurring_id, is_confirmed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, tx := range txs {
		var recurringID sql.NullInt64
		if tx.RecurringID != nil {
			recurringID = sql.NullInt64{Int64: *tx.RecurringID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			tx.ID, tx.Description, tx.Amount, tx.Date.String(), tx.Label,
			tx.IsRecurring, recurringID, tx.IsConfirmed); err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", tx.ID, err)
		}
	}

	meta := map[string]string{
		metaBalance:     strconv.FormatFloat(balance, 'f', -1, 64),
		metaRefreshedAt: s.now().UTC().Format(time.RFC3339),
		metaWindowStart: start.String(),
		metaWindowEnd:   end.String(),
	}
	for key, value := range meta {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit refresh: %w", err)
	}

	return nil
}

// Window returns every cached transaction ordered by date, then id.
func (s *SQLiteStore) Window(ctx context.Context) ([]model.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, description, amount, date, label, is_recurring, recurring_id, is_confirmed
		FROM transactions
		ORDER BY date, id`)
}

// Upcoming returns up to limit unconfirmed transactions dated today or
// later.
func (s *SQLiteStore) Upcoming(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		return nil, nil
	}
	today := model.DateOf(s.now())
	return s.queryTransactions(ctx, `
		SELECT id, description, amount, date, label, is_recurring, recurring_id, is_confirmed
		FROM transactions
		WHERE date >= ? AND is_confirmed = 0
		ORDER BY date, id
		LIMIT ?`, today.String(), limit)
}

// Balance returns the balance captured at the last refresh.
func (s *SQLiteStore) Balance(ctx context.Context) (float64, error) {
	value, err := s.metaValue(ctx, metaBalance)
	if err != nil {
		return 0, err
	}
	balance, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt cached balance %q: %w", value, err)
	}
	return balance, nil
}

// LastRefreshed returns when the window was last replaced, or the zero
// time if the cache has never been refreshed.
func (s *SQLiteStore) LastRefreshed(ctx context.Context) (time.Time, error) {
	value, err := s.metaValue(ctx, metaRefreshedAt)
	if err != nil {
		if common.IsNotFound(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	refreshed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt refresh timestamp %q: %w", value, err)
	}
	return refreshed, nil
}

// MarkConfirmed flips the confirmation flag of a single cached transaction.
func (s *SQLiteStore) MarkConfirmed(ctx context.Context, id int64, confirmed bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET is_confirmed = ? WHERE id = ?", confirmed, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
	}
	return s.requireRow(result, id)
}

// Replace overwrites a single cached transaction in place.
func (s *SQLiteStore) Replace(ctx context.Context, tx model.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	var recurringID sql.NullInt64
	if tx.RecurringID != nil {
		recurringID = sql.NullInt64{Int64: *tx.RecurringID, Valid: true}
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount = ?, date = ?, label = ?, is_recurring = ?, recurring_id = ?, is_confirmed = ?
		WHERE id = ?`,
		tx.Description, tx.Amount, tx.Date.String(), tx.Label,
		tx.IsRecurring, recurringID, tx.IsConfirmed, tx.ID)
	if err != nil {
		return fmt.Errorf("failed to replace transaction %d: %w", tx.ID, err)
	}
	return s.requireRow(result, tx.ID)
}

func (s *SQLiteStore) requireRow(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) metaValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("cache never refreshed: %w", common.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var dateStr string
		var recurringID sql.NullInt64
		if err := rows.Scan(&tx.ID, &tx.Description, &tx.Amount, &dateStr,
			&tx.Label, &tx.IsRecurring, &recurringID, &tx.IsConfirmed); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		date, err := model.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached date %q: %w", dateStr, err)
		}
		tx.Date = date
		if recurringID.Valid {
			id := recurringID.Int64
			tx.RecurringID = &id
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}
