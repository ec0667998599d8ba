package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MaxWorkers caps seeding fan-out; target platforms rate-limit hard above
// this.
const MaxWorkers = 16

// Runner executes per-record seeding with bounded parallelism. A semaphore
// limits in-flight create calls and one record's failure never cancels its
// siblings.
type Runner struct {
	workers int
	logger  *zap.Logger
}

// NewRunner creates a runner with the given concurrency, clamped to
// [1, MaxWorkers].
func NewRunner(workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return &Runner{
		workers: workers,
		logger:  logger.Named("runner"),
	}
}

// SeedFunc seeds one record, returning the typed outcome. Returning an error
// forces StatusFailed regardless of the returned status.
type SeedFunc[T any] func(ctx context.Context, record T) (Status, error)

// Run seeds all records concurrently and aggregates a Summary. keyFn derives
// the natural key used in results; seeding continues past individual
// failures, and a canceled context marks the remaining records failed rather
// than aborting the collection.
func Run[T any](ctx context.Context, r *Runner, entity string, records []T, keyFn func(T) string, seed SeedFunc[T]) Summary {
	if len(records) == 0 {
		return Summary{Entity: entity}
	}

	results := make([]Result, len(records))
	sem := make(chan struct{}, r.workers)

	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec T) {
			defer wg.Done()

			key := keyFn(rec)

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result{Key: key, Status: StatusFailed, Err: ctx.Err()}
				return
			}

			status, err := seed(ctx, rec)
			if err != nil {
				r.logger.Error("record seeding failed",
					zap.String("entity", entity),
					zap.String("key", key),
					zap.Error(err))
				results[i] = Result{Key: key, Status: StatusFailed, Err: err}
				return
			}
			results[i] = Result{Key: key, Status: status}
		}(i, rec)
	}
	wg.Wait()

	summary := newSummary(entity, results)
	r.logger.Info("seeding finished",
		zap.String("entity", entity),
		zap.Int("total", summary.Total),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary
}

// RunSequential is Run with a single worker, for platforms that reject any
// concurrent writes (Odoo JSON-RPC, direct SQL with FK ordering).
func RunSequential[T any](ctx context.Context, logger *zap.Logger, entity string, records []T, keyFn func(T) string, seed SeedFunc[T]) Summary {
	return Run(ctx, NewRunner(1, logger), entity, records, keyFn, seed)
}
