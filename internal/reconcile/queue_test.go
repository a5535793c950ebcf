package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

func potentialUpdate(txID int64, recurringID *int64, newAmount float64) model.PotentialUpdate {
	return model.PotentialUpdate{
		TransactionID:   txID,
		RecurringID:     recurringID,
		OldAmount:       newAmount + 5,
		NewAmount:       newAmount,
		CSVDescription:  "STATEMENT DESC",
		DBDescription:   "Ledger desc",
		CSVDate:         model.NewDate(2025, time.August, 2),
		DBDate:          model.NewDate(2025, time.August, 1),
		SimilarityScore: 0.85,
	}
}

func TestUpdateQueue_CurrentEmpty(t *testing.T) {
	q := NewUpdateQueue(&fakeLedger{}, &fakeCache{})

	_, err := q.Current()
	assert.True(t, errors.Is(err, common.ErrNothingToResolve))
	assert.True(t, q.Drained())
}

func TestUpdateQueue_ResolveSuccess(t *testing.T) {
	ledger := &fakeLedger{}
	cache := &fakeCache{}
	q := NewUpdateQueue(ledger, cache)

	recurringID := int64(7)
	q.Load([]model.PotentialUpdate{
		potentialUpdate(5, &recurringID, -65),
		potentialUpdate(8, nil, -30),
	})

	require.NoError(t, q.Resolve(context.Background(), true))

	require.Len(t, ledger.decisions, 1)
	decision := ledger.decisions[0]
	assert.Equal(t, int64(5), decision.TransactionID)
	require.NotNil(t, decision.RecurringID)
	assert.Equal(t, int64(7), *decision.RecurringID)
	assert.InDelta(t, -65, decision.NewAmount, 0.001)
	assert.True(t, decision.UpdateFuture)

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 1, cache.refreshes)

	head, err := q.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(8), head.TransactionID)
}

func TestUpdateQueue_ResolveNilRecurringID(t *testing.T) {
	ledger := &fakeLedger{}
	q := NewUpdateQueue(ledger, &fakeCache{})
	q.Load([]model.PotentialUpdate{potentialUpdate(3, nil, -12)})

	require.NoError(t, q.Resolve(context.Background(), false))

	require.Len(t, ledger.decisions, 1)
	assert.Nil(t, ledger.decisions[0].RecurringID)
	assert.False(t, ledger.decisions[0].UpdateFuture)
}

func TestUpdateQueue_ResolveFailureKeepsHead(t *testing.T) {
	ledger := &fakeLedger{confirmUpdateErr: errors.New("ledger unreachable")}
	cache := &fakeCache{}
	q := NewUpdateQueue(ledger, cache)
	q.Load([]model.PotentialUpdate{potentialUpdate(5, nil, -65)})

	err := q.Resolve(context.Background(), true)
	require.Error(t, err)

	// Exactly one write was attempted and the head is still resolvable.
	assert.Len(t, ledger.decisions, 1)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 0, cache.refreshes)

	head, headErr := q.Current()
	require.NoError(t, headErr)
	assert.Equal(t, int64(5), head.TransactionID)

	// The retry issues a second, identical write.
	ledger.confirmUpdateErr = nil
	require.NoError(t, q.Resolve(context.Background(), true))
	assert.Len(t, ledger.decisions, 2)
	assert.True(t, q.Drained())
}

func TestUpdateQueue_RefreshFailureReportedAsStale(t *testing.T) {
	ledger := &fakeLedger{}
	cache := &fakeCache{refreshErr: errors.New("ledger unreachable")}
	q := NewUpdateQueue(ledger, cache)
	q.Load([]model.PotentialUpdate{potentialUpdate(5, nil, -65)})

	err := q.Resolve(context.Background(), false)
	assert.True(t, errors.Is(err, common.ErrStaleCache))

	// The ledger accepted the decision; the update must not come back.
	assert.Len(t, ledger.decisions, 1)
	assert.True(t, q.Drained())
}

func TestUpdateQueue_ResolveRemovesAllMatchingTransaction(t *testing.T) {
	ledger := &fakeLedger{}
	q := NewUpdateQueue(ledger, &fakeCache{})
	q.Load([]model.PotentialUpdate{
		potentialUpdate(5, nil, -65),
		potentialUpdate(9, nil, -20),
		potentialUpdate(5, nil, -64),
	})

	require.NoError(t, q.Resolve(context.Background(), false))

	// Both entries for transaction 5 settle with one decision.
	assert.Len(t, ledger.decisions, 1)
	assert.Equal(t, 1, q.Len())
	head, err := q.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(9), head.TransactionID)
}

func TestUpdateQueue_DrainsWithRefreshPerSuccess(t *testing.T) {
	ledger := &fakeLedger{}
	cache := &fakeCache{}
	q := NewUpdateQueue(ledger, cache)
	q.Load([]model.PotentialUpdate{
		potentialUpdate(1, nil, -10),
		potentialUpdate(2, nil, -20),
		potentialUpdate(3, nil, -30),
	})

	ctx := context.Background()
	for !q.Drained() {
		require.NoError(t, q.Resolve(ctx, true))
	}

	assert.Len(t, ledger.decisions, 3)
	assert.Equal(t, 3, cache.refreshes)
	_, err := q.Current()
	assert.True(t, errors.Is(err, common.ErrNothingToResolve))
}

func TestUpdateQueue_LoadReplacesPrevious(t *testing.T) {
	q := NewUpdateQueue(&fakeLedger{}, &fakeCache{})
	q.Load([]model.PotentialUpdate{potentialUpdate(1, nil, -10)})
	q.Load([]model.PotentialUpdate{potentialUpdate(2, nil, -20), potentialUpdate(3, nil, -30)})

	assert.Equal(t, 2, q.Len())
	head, err := q.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(2), head.TransactionID)
}
