package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intKey(i int) string { return strconv.Itoa(i) }

func TestRun_AllSucceed(t *testing.T) {
	r := NewRunner(4, zap.NewNop())
	records := []int{1, 2, 3, 4, 5}

	summary := Run(context.Background(), r, "agents", records, intKey,
		func(ctx context.Context, rec int) (Status, error) {
			return StatusCreated, nil
		})

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 5, summary.Created)
	assert.True(t, summary.Ok())
	assert.Equal(t, "Successfully added 5 out of 5 agents", summary.String())
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	r := NewRunner(4, zap.NewNop())
	records := []int{1, 2, 3, 4, 5}

	summary := Run(context.Background(), r, "agents", records, intKey,
		func(ctx context.Context, rec int) (Status, error) {
			if rec == 2 || rec == 4 {
				return StatusFailed, errors.New("boom")
			}
			return StatusCreated, nil
		})

	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, "Successfully added 3 out of 5 agents (0 skipped, 2 failed)", summary.String())
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "2", summary.Failures[0].Key)
}

func TestRun_SkippedDuplicates(t *testing.T) {
	r := NewRunner(2, zap.NewNop())
	summary := Run(context.Background(), r, "labels", []int{1, 2, 3}, intKey,
		func(ctx context.Context, rec int) (Status, error) {
			if rec == 1 {
				return StatusSkipped, nil
			}
			return StatusCreated, nil
		})

	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.True(t, summary.Ok())
}

func TestRun_BoundsConcurrency(t *testing.T) {
	const workers = 3
	r := NewRunner(workers, zap.NewNop())

	var inFlight, peak int64
	var mu sync.Mutex

	records := make([]int, 50)
	summary := Run(context.Background(), r, "records", records, func(int) string { return "k" },
		func(ctx context.Context, rec int) (Status, error) {
			n := atomic.AddInt64(&inFlight, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			defer atomic.AddInt64(&inFlight, -1)
			return StatusCreated, nil
		})

	assert.Equal(t, 50, summary.Created)
	assert.LessOrEqual(t, peak, int64(workers))
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(1, zap.NewNop())
	summary := Run(ctx, r, "agents", []int{1, 2, 3}, intKey,
		func(ctx context.Context, rec int) (Status, error) {
			select {
			case <-ctx.Done():
				return StatusFailed, ctx.Err()
			default:
				return StatusCreated, nil
			}
		})

	// No panic, every record accounted for.
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, summary.Created+summary.Skipped+summary.Failed, summary.Total)
}

func TestRun_EmptyInput(t *testing.T) {
	r := NewRunner(4, zap.NewNop())
	summary := Run(context.Background(), r, "agents", nil, intKey,
		func(ctx context.Context, rec int) (Status, error) {
			t.Fatal("seed must not be called")
			return StatusFailed, nil
		})
	assert.Equal(t, 0, summary.Total)
	assert.True(t, summary.Ok())
}
