package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// UpdateQueue drains potential updates from a statement import one at a
// time. The head stays put until its decision is accepted by the ledger,
// so a transport failure is always retryable without losing position.
type UpdateQueue struct {
	ledger  Ledger
	cache   Cache
	pending []model.PotentialUpdate
}

// NewUpdateQueue creates an empty queue writing through ledger and cache.
func NewUpdateQueue(ledger Ledger, cache Cache) *UpdateQueue {
	return &UpdateQueue{
		ledger: ledger,
		cache:  cache,
	}
}

// Load replaces the queue contents with the updates from a fresh import.
func (q *UpdateQueue) Load(updates []model.PotentialUpdate) {
	q.pending = make([]model.PotentialUpdate, len(updates))
	copy(q.pending, updates)
}

// Current returns the head of the queue without removing it.
func (q *UpdateQueue) Current() (model.PotentialUpdate, error) {
	if len(q.pending) == 0 {
		return model.PotentialUpdate{}, common.ErrNothingToResolve
	}
	return q.pending[0], nil
}

// Resolve submits the decision for the head of the queue. updateFuture
// selects whether the whole recurring series or only this occurrence is
// amended. On success every queued update sharing the head's transaction
// id is removed and the cache is refreshed; a rejected decision leaves
// the head in place. A refresh failure after the ledger accepted the
// decision is reported as common.ErrStaleCache with the update already
// removed, so it must not be retried.
func (q *UpdateQueue) Resolve(ctx context.Context, updateFuture bool) error {
	head, err := q.Current()
	if err != nil {
		return err
	}

	decision := model.UpdateDecision{
		TransactionID: head.TransactionID,
		RecurringID:   head.RecurringID,
		NewAmount:     head.NewAmount,
		UpdateFuture:  updateFuture,
	}

	if err := q.ledger.ConfirmUpdate(ctx, decision); err != nil {
		return fmt.Errorf("failed to resolve update for transaction %d: %w", head.TransactionID, err)
	}

	q.remove(head.TransactionID)

	slog.Info("Resolved potential update",
		"transaction_id", head.TransactionID,
		"update_future", updateFuture,
		"remaining", len(q.pending))

	if err := q.cache.Refresh(ctx); err != nil {
		return fmt.Errorf("update accepted but %w: %w", common.ErrStaleCache, err)
	}
	return nil
}

// remove drops every queued update for the given transaction. A single
// import can surface the same transaction more than once; resolving it
// settles all of them.
func (q *UpdateQueue) remove(transactionID int64) {
	kept := q.pending[:0]
	for _, update := range q.pending {
		if update.TransactionID != transactionID {
			kept = append(kept, update)
		}
	}
	q.pending = kept
}

// Len returns the number of updates still awaiting a decision.
func (q *UpdateQueue) Len() int {
	return len(q.pending)
}

// Drained reports whether every update has been resolved.
func (q *UpdateQueue) Drained() bool {
	return len(q.pending) == 0
}
