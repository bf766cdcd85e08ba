package download

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Outcome pairs an item with the error its operation returned, so results
// in completion order can still be traced to their item.
type Outcome[T any] struct {
	Item T
	Err  error
}

// RunBounded runs op over items with at most limit operations in flight and
// returns their results in completion order, not submission order. A limit
// below one is treated as one.
//
// Every launched operation runs to completion. If ctx is cancelled, no
// further items are launched and ctx's error is returned alongside the
// results of the operations that did run.
func RunBounded[T, R any](ctx context.Context, items []T, limit int, op func(context.Context, T) R) ([]R, error) {
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(int64(limit))
	results := make(chan R, len(items))

	launched := 0
	var stopErr error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			stopErr = err
			break
		}
		launched++
		go func(item T) {
			defer sem.Release(1)
			results <- op(ctx, item)
		}(item)
	}

	out := make([]R, 0, launched)
	for i := 0; i < launched; i++ {
		out = append(out, <-results)
	}
	return out, stopErr
}

// RunBatch runs op over items through RunBounded and returns the first
// failing Outcome in completion order. Work already committed by other
// items is kept.
func RunBatch[T any](ctx context.Context, items []T, limit int, op func(context.Context, T) error) (*Outcome[T], error) {
	outcomes, err := RunBounded(ctx, items, limit, func(ctx context.Context, item T) Outcome[T] {
		return Outcome[T]{Item: item, Err: op(ctx, item)}
	})
	for i := range outcomes {
		if outcomes[i].Err != nil {
			return &outcomes[i], outcomes[i].Err
		}
	}
	return nil, err
}
