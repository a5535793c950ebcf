package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// Coordinator applies transaction mutations optimistically: the cache is
// patched before the ledger confirms, and a rejected write rolls the
// cache back by refetching. At most one confirm or unconfirm may be in
// flight per transaction id.
type Coordinator struct {
	ledger  Ledger
	cache   Cache
	pending map[int64]bool
	mu      sync.Mutex
}

// NewCoordinator creates a coordinator writing through ledger and cache.
func NewCoordinator(ledger Ledger, cache Cache) *Coordinator {
	return &Coordinator{
		ledger:  ledger,
		cache:   cache,
		pending: make(map[int64]bool),
	}
}

// SetConfirmed confirms or unconfirms a transaction. The cached row is
// flipped immediately so the UI reflects the change without waiting; if
// the ledger rejects the write, the cache is refreshed to undo it.
func (c *Coordinator) SetConfirmed(ctx context.Context, id int64, confirmed bool) error {
	if err := c.acquire(id); err != nil {
		return err
	}
	defer c.release(id)

	if err := c.cache.MarkConfirmed(ctx, id, confirmed); err != nil {
		return fmt.Errorf("failed to apply optimistic update for transaction %d: %w", id, err)
	}

	var err error
	if confirmed {
		err = c.ledger.ConfirmTransaction(ctx, id)
	} else {
		err = c.ledger.UnconfirmTransaction(ctx, id)
	}
	if err != nil {
		slog.Warn("Mutation rejected, rolling back via refresh",
			"transaction_id", id,
			"confirmed", confirmed,
			"error", err)
		if refreshErr := c.cache.Refresh(ctx); refreshErr != nil {
			common.LogError(refreshErr, "Rollback refresh failed, cached row is wrong until the next refresh",
				common.Fields{"transaction_id": id})
			return fmt.Errorf("mutation failed and rollback refresh failed: %w", refreshErr)
		}
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
	}

	return nil
}

// Pending reports whether a confirm or unconfirm for id is in flight.
func (c *Coordinator) Pending(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[id]
}

// Edit sends an edit to the ledger and only then touches the cache: a
// single edit splices the updated row in place, a series edit refetches
// because the server rewrites future occurrences we cannot predict.
func (c *Coordinator) Edit(ctx context.Context, tx model.Transaction, editType model.EditType) error {
	if err := c.ledger.UpdateTransaction(ctx, tx, editType); err != nil {
		return fmt.Errorf("failed to edit transaction %d: %w", tx.ID, err)
	}

	if editType == model.EditFuture {
		if err := c.cache.Refresh(ctx); err != nil {
			return fmt.Errorf("edit accepted but %w: %w", common.ErrStaleCache, err)
		}
		return nil
	}

	if err := c.cache.Replace(ctx, tx); err != nil {
		return fmt.Errorf("edit accepted but cache update failed: %w", err)
	}
	return nil
}

// Delete removes a transaction, or a transaction and its future
// occurrences, then refetches. Deletion is never applied optimistically.
func (c *Coordinator) Delete(ctx context.Context, id int64, deleteType model.DeleteType) error {
	if err := c.ledger.DeleteTransaction(ctx, id, deleteType); err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	if err := c.cache.Refresh(ctx); err != nil {
		return fmt.Errorf("delete accepted but %w: %w", common.ErrStaleCache, err)
	}
	return nil
}

func (c *Coordinator) acquire(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[id] {
		return fmt.Errorf("transaction %d: %w", id, common.ErrMutationPending)
	}
	c.pending[id] = true
	return nil
}

func (c *Coordinator) release(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}
