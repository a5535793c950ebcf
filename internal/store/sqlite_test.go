package store

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

type fakeLedger struct {
	balanceErr     error
	transactionErr error
	transactions   []model.Transaction
	balance        float64
	gotStart       model.Date
	gotEnd         model.Date
	gotPeriod      int
}

func (f *fakeLedger) Balance(_ context.Context) (float64, error) {
	return f.balance, f.balanceErr
}

func (f *fakeLedger) Transactions(_ context.Context, start, end model.Date, forecastPeriod int) ([]model.Transaction, error) {
	f.gotStart = start
	f.gotEnd = end
	f.gotPeriod = forecastPeriod
	return f.transactions, f.transactionErr
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore(t *testing.T, ledger *fakeLedger) *SQLiteStore {
	t.Helper()
	now := time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC)
	s, err := NewSQLiteStore(":memory:", ledger, 12, WithClock(fixedClock(now)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTransactions() []model.Transaction {
	recurringID := int64(3)
	return []model.Transaction{
		{
			ID:          1,
			Description: "Rent",
			Amount:      -1200,
			Date:        model.NewDate(2025, time.September, 1),
			IsRecurring: true,
			RecurringID: &recurringID,
		},
		{
			ID:          2,
			Description: "Salary",
			Amount:      3000,
			Date:        model.NewDate(2025, time.July, 25),
			IsConfirmed: true,
		},
	}
}

func TestSQLiteStore_RefreshAndWindow(t *testing.T) {
	ledger := &fakeLedger{balance: 1523.42, transactions: sampleTransactions()}
	s := newTestStore(t, ledger)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))

	assert.Equal(t, "2025-07-15", ledger.gotStart.String())
	assert.Equal(t, "2026-08-15", ledger.gotEnd.String())
	assert.Equal(t, 12, ledger.gotPeriod)

	window, err := s.Window(ctx)
	require.NoError(t, err)
	require.Len(t, window, 2)

	// Ordered by date, not by id.
	assert.Equal(t, int64(2), window[0].ID)
	assert.Equal(t, int64(1), window[1].ID)
	require.NotNil(t, window[1].RecurringID)
	assert.Equal(t, int64(3), *window[1].RecurringID)
	assert.Nil(t, window[0].RecurringID)

	balance, err := s.Balance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1523.42, balance, 0.001)

	refreshed, err := s.LastRefreshed(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC), refreshed)
}

func TestSQLiteStore_RefreshReplacesWholesale(t *testing.T) {
	ledger := &fakeLedger{balance: 100, transactions: sampleTransactions()}
	s := newTestStore(t, ledger)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))

	ledger.balance = 250
	ledger.transactions = []model.Transaction{
		{ID: 9, Description: "Groceries", Amount: -80, Date: model.NewDate(2025, time.August, 14), IsConfirmed: true},
	}
	require.NoError(t, s.Refresh(ctx))

	window, err := s.Window(ctx)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, int64(9), window[0].ID)

	balance, err := s.Balance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 250, balance, 0.001)
}

func TestSQLiteStore_FailedRefreshKeepsOldWindow(t *testing.T) {
	ledger := &fakeLedger{balance: 100, transactions: sampleTransactions()}
	s := newTestStore(t, ledger)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))

	ledger.transactionErr = errors.New("ledger unreachable")
	require.Error(t, s.Refresh(ctx))

	window, err := s.Window(ctx)
	require.NoError(t, err)
	assert.Len(t, window, 2, "a failed refresh must not discard the cached window")
}

func TestSQLiteStore_EmptyBeforeFirstRefresh(t *testing.T) {
	s := newTestStore(t, &fakeLedger{})
	ctx := context.Background()

	window, err := s.Window(ctx)
	require.NoError(t, err)
	assert.Empty(t, window)

	_, err = s.Balance(ctx)
	assert.True(t, common.IsNotFound(err))

	refreshed, err := s.LastRefreshed(ctx)
	require.NoError(t, err)
	assert.True(t, refreshed.IsZero())
}

func TestSQLiteStore_Upcoming(t *testing.T) {
	txs := []model.Transaction{
		{ID: 1, Description: "Past", Amount: -10, Date: model.NewDate(2025, time.August, 1)},
		{ID: 2, Description: "Today", Amount: -20, Date: model.NewDate(2025, time.August, 15)},
		{ID: 3, Description: "Paid", Amount: -25, Date: model.NewDate(2025, time.August, 20), IsConfirmed: true},
		{ID: 4, Description: "Soon", Amount: -30, Date: model.NewDate(2025, time.September, 2)},
		{ID: 5, Description: "Later", Amount: -40, Date: model.NewDate(2025, time.October, 9)},
	}
	s := newTestStore(t, &fakeLedger{transactions: txs})
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	upcoming, err := s.Upcoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "Today", upcoming[0].Description)
	assert.Equal(t, "Soon", upcoming[1].Description)

	none, err := s.Upcoming(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_MarkConfirmed(t *testing.T) {
	s := newTestStore(t, &fakeLedger{transactions: sampleTransactions()})
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	require.NoError(t, s.MarkConfirmed(ctx, 1, true))

	window, err := s.Window(ctx)
	require.NoError(t, err)
	for _, tx := range window {
		if tx.ID == 1 {
			assert.True(t, tx.IsConfirmed)
		}
	}

	err = s.MarkConfirmed(ctx, 999, true)
	assert.True(t, common.IsNotFound(err))
}

func TestSQLiteStore_Replace(t *testing.T) {
	s := newTestStore(t, &fakeLedger{transactions: sampleTransactions()})
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	updated := model.Transaction{
		ID:          1,
		Description: "Rent (new lease)",
		Amount:      -1250,
		Date:        model.NewDate(2025, time.September, 1),
		IsRecurring: true,
	}
	require.NoError(t, s.Replace(ctx, updated))

	window, err := s.Window(ctx)
	require.NoError(t, err)
	for _, tx := range window {
		if tx.ID == 1 {
			assert.Equal(t, "Rent (new lease)", tx.Description)
			assert.InDelta(t, -1250, tx.Amount, 0.001)
			assert.Nil(t, tx.RecurringID)
		}
	}

	missing := updated
	missing.ID = 999
	err = s.Replace(ctx, missing)
	assert.True(t, common.IsNotFound(err))
}

func TestNewSQLiteStore_Validation(t *testing.T) {
	_, err := NewSQLiteStore("", &fakeLedger{}, 12)
	assert.Error(t, err)

	_, err = NewSQLiteStore(":memory:", nil, 12)
	assert.Error(t, err)

	_, err = NewSQLiteStore(":memory:", &fakeLedger{}, 0)
	assert.Error(t, err)
}
