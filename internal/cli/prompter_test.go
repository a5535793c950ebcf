package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// fakeQueue drives the prompter without a real ledger behind it.
// failures counts down: each Resolve fails until it reaches zero.
// staleErrs counts down separately: those Resolves apply the decision
// but report the post-success refresh failure.
type fakeQueue struct {
	items     []model.PotentialUpdate
	resolved  []bool
	failures  int
	staleErrs int
}

func (q *fakeQueue) Current() (model.PotentialUpdate, error) {
	if len(q.items) == 0 {
		return model.PotentialUpdate{}, common.ErrNothingToResolve
	}
	return q.items[0], nil
}

func (q *fakeQueue) Resolve(_ context.Context, updateFuture bool) error {
	if q.failures > 0 {
		q.failures--
		return assert.AnError
	}
	q.resolved = append(q.resolved, updateFuture)
	q.items = q.items[1:]
	if q.staleErrs > 0 {
		q.staleErrs--
		return fmt.Errorf("update accepted but %w: %w", common.ErrStaleCache, assert.AnError)
	}
	return nil
}

func (q *fakeQueue) Len() int      { return len(q.items) }
func (q *fakeQueue) Drained() bool { return len(q.items) == 0 }

func pendingUpdate(txID int64) model.PotentialUpdate {
	return model.PotentialUpdate{
		TransactionID:   txID,
		OldAmount:       -60,
		NewAmount:       -65,
		CSVDescription:  "GYM MEMBERSHIP",
		DBDescription:   "Gym",
		CSVDate:         model.NewDate(2025, time.August, 2),
		DBDate:          model.NewDate(2025, time.August, 1),
		SimilarityScore: 0.85,
	}
}

func TestPrompter_ResolveUpdatesDrains(t *testing.T) {
	queue := &fakeQueue{items: []model.PotentialUpdate{pendingUpdate(1), pendingUpdate(2)}}
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("f\no\n"), out, "YYYY-MM-DD")

	require.NoError(t, p.ResolveUpdates(context.Background(), queue))

	assert.Equal(t, []bool{true, false}, queue.resolved)
	assert.True(t, queue.Drained())
	assert.Contains(t, out.String(), "All updates resolved")
}

func TestPrompter_QuitLeavesRemaining(t *testing.T) {
	queue := &fakeQueue{items: []model.PotentialUpdate{pendingUpdate(1), pendingUpdate(2)}}
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("f\nq\n"), out, "YYYY-MM-DD")

	require.NoError(t, p.ResolveUpdates(context.Background(), queue))

	assert.Equal(t, []bool{true}, queue.resolved)
	assert.Equal(t, 1, queue.Len())
	assert.Contains(t, out.String(), "1 update(s) left unresolved")
}

func TestPrompter_InvalidInputReprompts(t *testing.T) {
	queue := &fakeQueue{items: []model.PotentialUpdate{pendingUpdate(1)}}
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("x\nmaybe\nf\n"), out, "YYYY-MM-DD")

	require.NoError(t, p.ResolveUpdates(context.Background(), queue))

	assert.Equal(t, []bool{true}, queue.resolved)
	assert.Contains(t, out.String(), "Please enter one of")
}

func TestPrompter_FailedDecisionOffersRetry(t *testing.T) {
	queue := &fakeQueue{
		items:    []model.PotentialUpdate{pendingUpdate(1)},
		failures: 1,
	}
	out := &bytes.Buffer{}
	// First decision fails, the user retries, the retry succeeds.
	p := NewPrompter(strings.NewReader("f\nr\nf\n"), out, "YYYY-MM-DD")

	require.NoError(t, p.ResolveUpdates(context.Background(), queue))

	assert.Equal(t, []bool{true}, queue.resolved)
	assert.True(t, queue.Drained())
	assert.Contains(t, out.String(), "Could not apply update")
}

func TestPrompter_StaleCacheAfterDecisionContinues(t *testing.T) {
	queue := &fakeQueue{
		items:     []model.PotentialUpdate{pendingUpdate(1), pendingUpdate(2)},
		staleErrs: 1,
	}
	out := &bytes.Buffer{}
	// No retry answer is queued: an applied decision never prompts one.
	p := NewPrompter(strings.NewReader("f\no\n"), out, "YYYY-MM-DD")

	require.NoError(t, p.ResolveUpdates(context.Background(), queue))

	assert.Equal(t, []bool{true, false}, queue.resolved)
	assert.True(t, queue.Drained())
	assert.Contains(t, out.String(), "refreshing the local view failed")
	assert.NotContains(t, out.String(), "Try again?")
}

func TestPrompter_FailedDecisionQuit(t *testing.T) {
	queue := &fakeQueue{
		items:    []model.PotentialUpdate{pendingUpdate(1)},
		failures: 1,
	}
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("o\nq\n"), out, "YYYY-MM-DD")

	require.NoError(t, p.ResolveUpdates(context.Background(), queue))
	assert.Equal(t, 1, queue.Len(), "a failed decision keeps the update queued")
}

func TestPrompter_EmptyQueueIsNoOp(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader(""), out, "YYYY-MM-DD")

	require.NoError(t, p.ResolveUpdates(context.Background(), &fakeQueue{}))
	assert.Empty(t, out.String())
}

func TestPrompter_ContextCancellation(t *testing.T) {
	queue := &fakeQueue{items: []model.PotentialUpdate{pendingUpdate(1)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The pipe never produces input, so only cancellation can end the read.
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	p := NewPrompter(pr, &bytes.Buffer{}, "YYYY-MM-DD")
	err := p.ResolveUpdates(ctx, queue)
	assert.ErrorIs(t, err, ErrInputCancelled)
}
