package reconcile

import (
	"context"
	"sync"

	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// fakeLedger records every write and fails on demand.
type fakeLedger struct {
	confirmUpdateErr     error
	createTransactionErr error
	createRecurringErr   error
	confirmErr           error
	unconfirmErr         error
	updateErr            error
	deleteErr            error

	confirmGate chan struct{}

	decisions          []model.UpdateDecision
	createdTxs         []model.Transaction
	createdRules       []model.RecurringRule
	confirmedIDs       []int64
	unconfirmedIDs     []int64
	updatedTxs         []model.Transaction
	updatedEditTypes   []model.EditType
	deletedIDs         []int64
	deletedDeleteTypes []model.DeleteType

	nextTxID   int64
	nextRuleID int64
	mu         sync.Mutex
}

func (f *fakeLedger) ConfirmUpdate(_ context.Context, decision model.UpdateDecision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, decision)
	return f.confirmUpdateErr
}

func (f *fakeLedger) CreateTransaction(_ context.Context, tx model.Transaction) (model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdTxs = append(f.createdTxs, tx)
	if f.createTransactionErr != nil {
		return model.Transaction{}, f.createTransactionErr
	}
	f.nextTxID++
	tx.ID = f.nextTxID
	return tx, nil
}

func (f *fakeLedger) CreateRecurring(_ context.Context, rule model.RecurringRule) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdRules = append(f.createdRules, rule)
	if f.createRecurringErr != nil {
		return 0, f.createRecurringErr
	}
	f.nextRuleID++
	return f.nextRuleID, nil
}

func (f *fakeLedger) ConfirmTransaction(_ context.Context, id int64) error {
	if f.confirmGate != nil {
		<-f.confirmGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmedIDs = append(f.confirmedIDs, id)
	return f.confirmErr
}

func (f *fakeLedger) UnconfirmTransaction(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unconfirmedIDs = append(f.unconfirmedIDs, id)
	return f.unconfirmErr
}

func (f *fakeLedger) UpdateTransaction(_ context.Context, tx model.Transaction, editType model.EditType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedTxs = append(f.updatedTxs, tx)
	f.updatedEditTypes = append(f.updatedEditTypes, editType)
	return f.updateErr
}

func (f *fakeLedger) DeleteTransaction(_ context.Context, id int64, deleteType model.DeleteType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, id)
	f.deletedDeleteTypes = append(f.deletedDeleteTypes, deleteType)
	return f.deleteErr
}

// fakeCache records calls in order so tests can assert the optimistic
// apply happened before the ledger write.
type fakeCache struct {
	refreshErr       error
	markConfirmedErr error
	replaceErr       error

	calls      []string
	marked     []int64
	markedVals []bool
	replaced   []model.Transaction
	refreshes  int
	mu         sync.Mutex
}

func (f *fakeCache) Refresh(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "refresh")
	f.refreshes++
	return f.refreshErr
}

func (f *fakeCache) MarkConfirmed(_ context.Context, id int64, confirmed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "mark_confirmed")
	f.marked = append(f.marked, id)
	f.markedVals = append(f.markedVals, confirmed)
	return f.markConfirmedErr
}

func (f *fakeCache) Replace(_ context.Context, tx model.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "replace")
	f.replaced = append(f.replaced, tx)
	return f.replaceErr
}
