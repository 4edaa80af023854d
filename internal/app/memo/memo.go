// Package memo provides request-scoped memoization.
//
// A Memo lives for one request (for example one batch of expressions) and
// computes each key at most once, even when callers race on the same key:
//
//	m := memo.New[*domain.Calculation]()
//	calc, err := m.GetOrCompute(ctx, key, func(ctx context.Context) (*domain.Calculation, error) {
//	    return svc.Evaluate(ctx, line)
//	})
//
// Errors are not cached; a later call with the same key computes again.
package memo

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo caches computed values by key. Safe for concurrent use.
type Memo[T any] struct {
	values sync.Map
	group  singleflight.Group
}

// New creates an empty Memo.
func New[T any]() *Memo[T] {
	return &Memo[T]{}
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result. Concurrent callers with the same key share one compute call.
// The second return reports whether the value came from the cache or from
// another caller's in-flight computation.
func (m *Memo[T]) GetOrCompute(
	ctx context.Context,
	key string,
	compute func(ctx context.Context) (T, error),
) (value T, shared bool, err error) {
	if cached, ok := m.values.Load(key); ok {
		return cached.(T), true, nil
	}

	v, err, shared := m.group.Do(key, func() (any, error) {
		// A flight that finished between Load and Do already stored key.
		if cached, ok := m.values.Load(key); ok {
			return cached, nil
		}

		result, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		m.values.Store(key, result)

		return result, nil
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}

	return v.(T), shared, nil
}

// Len reports how many values are cached.
func (m *Memo[T]) Len() int {
	n := 0

	m.values.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}
