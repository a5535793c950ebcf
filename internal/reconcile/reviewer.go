package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// Reviewer walks a list of detected recurring candidates. Rows are
// freely editable until approved; approval is keyed by position so the
// same row cannot be approved twice even after edits. Methods are safe
// for concurrent use: approval runs in a background command while the
// view keeps reading row state.
type Reviewer struct {
	ledger     Ledger
	cache      Cache
	added      map[int]bool
	candidates []model.RecurringCandidate
	mu         sync.Mutex
}

// NewReviewer creates a reviewer over the detected candidates.
func NewReviewer(ledger Ledger, cache Cache, candidates []model.RecurringCandidate) *Reviewer {
	list := make([]model.RecurringCandidate, len(candidates))
	copy(list, candidates)
	return &Reviewer{
		ledger:     ledger,
		cache:      cache,
		added:      make(map[int]bool),
		candidates: list,
	}
}

// Candidates returns a copy of the current candidate list, edits included.
func (r *Reviewer) Candidates() []model.RecurringCandidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]model.RecurringCandidate, len(r.candidates))
	copy(list, r.candidates)
	return list
}

// Edit replaces the candidate at position i. Edits are unvalidated;
// validation happens at approval time.
func (r *Reviewer) Edit(i int, candidate model.RecurringCandidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkIndex(i); err != nil {
		return err
	}
	if r.added[i] {
		return fmt.Errorf("candidate %d: %w", i, common.ErrAlreadyApproved)
	}
	r.candidates[i] = candidate
	return nil
}

// Approve turns the candidate at position i into ledger state in two
// phases: first a confirmed transaction at the candidate's last observed
// date, then a recurring rule anchored at that same date. The rule is
// only created once the transaction exists. The two writes are not
// atomic; a phase 2 failure leaves the confirmed transaction in place
// and the row unapproved, so retrying re-runs both phases. The lock is
// not held across the ledger writes, so readers stay unblocked while an
// approval is in flight.
func (r *Reviewer) Approve(ctx context.Context, i int) error {
	candidate, err := r.snapshot(i)
	if err != nil {
		return err
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	created, err := r.ledger.CreateTransaction(ctx, candidate.AnchorTransaction())
	if err != nil {
		return fmt.Errorf("failed to create anchor transaction for %q: %w", candidate.Description, err)
	}

	ruleID, err := r.ledger.CreateRecurring(ctx, candidate.Rule())
	if err != nil {
		return fmt.Errorf("failed to create recurring rule for %q: %w", candidate.Description, err)
	}

	r.mu.Lock()
	r.added[i] = true
	r.mu.Unlock()

	slog.Info("Approved recurring candidate",
		"description", candidate.Description,
		"transaction_id", created.ID,
		"recurring_id", ruleID,
		"frequency", candidate.Frequency)

	if err := r.cache.Refresh(ctx); err != nil {
		return fmt.Errorf("candidate approved but %w: %w", common.ErrStaleCache, err)
	}
	return nil
}

// Added reports whether the candidate at position i has been approved.
func (r *Reviewer) Added(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.added[i]
}

// Pending returns how many candidates have not been approved yet.
func (r *Reviewer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.candidates) - len(r.added)
}

// snapshot copies the candidate at i if it is still approvable.
func (r *Reviewer) snapshot(i int) (model.RecurringCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkIndex(i); err != nil {
		return model.RecurringCandidate{}, err
	}
	if r.added[i] {
		return model.RecurringCandidate{}, fmt.Errorf("candidate %d: %w", i, common.ErrAlreadyApproved)
	}
	return r.candidates[i], nil
}

// checkIndex must be called with the lock held.
func (r *Reviewer) checkIndex(i int) error {
	if i < 0 || i >= len(r.candidates) {
		return fmt.Errorf("candidate index %d out of range [0,%d)", i, len(r.candidates))
	}
	return nil
}
