// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"
	"time"

	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// Ledger defines the contract of the remote Ledger Service, the single
// source of truth for transactions, recurring rules and settings.
type Ledger interface {
	// Balance operations
	Balance(ctx context.Context) (float64, error)
	SetBalance(ctx context.Context, balance float64) error

	// Transaction operations
	Transactions(ctx context.Context, start, end model.Date, forecastPeriod int) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx model.Transaction, editType model.EditType) error
	ConfirmTransaction(ctx context.Context, id int64) error
	UnconfirmTransaction(ctx context.Context, id int64) error
	DeleteTransaction(ctx context.Context, id int64, deleteType model.DeleteType) error

	// Recurring rule operations
	CreateRecurring(ctx context.Context, rule model.RecurringRule) (int64, error)
	UpdateRecurring(ctx context.Context, id int64, rule model.RecurringRule) error
	DeleteRecurring(ctx context.Context, id int64) error

	// CSV import operations. Re-uploading the same file produces duplicate
	// candidates server-side; these are never retried automatically.
	DetectRecurring(ctx context.Context, filename string, file io.Reader) ([]model.RecurringCandidate, error)
	MatchTransactions(ctx context.Context, filename string, file io.Reader) (model.ImportResult, error)
	ConfirmUpdate(ctx context.Context, decision model.UpdateDecision) error

	// Settings operations
	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, settings model.Settings) error
}

// Store is the client-held cache of the visible transaction window. The
// Ledger Service remains the source of truth; Refresh replaces the window
// wholesale.
type Store interface {
	Refresh(ctx context.Context) error
	Window(ctx context.Context) ([]model.Transaction, error)
	Balance(ctx context.Context) (float64, error)
	Upcoming(ctx context.Context, limit int) ([]model.Transaction, error)
	LastRefreshed(ctx context.Context) (time.Time, error)

	// Local mutators, used only by the mutation coordinator.
	MarkConfirmed(ctx context.Context, id int64, confirmed bool) error
	Replace(ctx context.Context, tx model.Transaction) error

	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
