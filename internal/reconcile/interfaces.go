// Package reconcile holds the client-side workflows that reconcile a
// bank statement against the ledger: the update decision queue, the
// recurring candidate reviewer, and the optimistic mutation coordinator.
package reconcile

import (
	"context"

	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// Ledger is the slice of the remote ledger the reconciliation workflows
// write through. Every write here is issued at most once per user action.
type Ledger interface {
	ConfirmUpdate(ctx context.Context, decision model.UpdateDecision) error
	CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	CreateRecurring(ctx context.Context, rule model.RecurringRule) (int64, error)
	ConfirmTransaction(ctx context.Context, id int64) error
	UnconfirmTransaction(ctx context.Context, id int64) error
	UpdateTransaction(ctx context.Context, tx model.Transaction, editType model.EditType) error
	DeleteTransaction(ctx context.Context, id int64, deleteType model.DeleteType) error
}

// Cache is the slice of the local store the workflows keep in sync.
// Refresh doubles as the rollback mechanism: the server is the source of
// truth, so recovering from a failed optimistic apply means refetching,
// never replaying inverse deltas.
type Cache interface {
	Refresh(ctx context.Context) error
	MarkConfirmed(ctx context.Context, id int64, confirmed bool) error
	Replace(ctx context.Context, tx model.Transaction) error
}
