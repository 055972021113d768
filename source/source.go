// Package source provides fetch functions for the expensive origins a
// cache fronts: a static value for tests and demos, a Redis-backed JSON
// origin, and wrappers that add a circuit breaker or retries around any
// fetch. Retrying and breaking live here, on the caller's side of the
// cache; cache.TTL.Refresh itself never retries and propagates fetch
// errors verbatim.
package source

import (
	"context"
	"errors"

	"github.com/Keksclan/goAcornStash/breaker"
	"github.com/Keksclan/goAcornStash/retry"
)

// ErrNotFound reports that the origin has no value for the requested
// dataset.
var ErrNotFound = errors.New("source: not found")

// ErrUnavailable reports that a breaker-guarded origin is currently
// failing fast; the underlying fetch was not invoked.
var ErrUnavailable = errors.New("source: unavailable")

// Fetch retrieves the current value of a dataset from its origin. It is
// the function type cache.TTL.Refresh and dataset.Store consume.
type Fetch[V any] func(ctx context.Context) (V, error)

// Static returns a Fetch that always yields val.
func Static[V any](val V) Fetch[V] {
	return func(_ context.Context) (V, error) {
		return val, nil
	}
}

// Failing returns a Fetch that always fails with err.
func Failing[V any](err error) Fetch[V] {
	return func(_ context.Context) (V, error) {
		var zero V
		return zero, err
	}
}

// WithBreaker guards fetch with a circuit breaker. While the breaker is
// open the returned Fetch fails fast with ErrUnavailable without invoking
// fetch; outcomes of invoked fetches feed the breaker.
func WithBreaker[V any](fetch Fetch[V], b *breaker.Breaker) Fetch[V] {
	return func(ctx context.Context) (V, error) {
		var zero V
		if !b.Allow() {
			return zero, ErrUnavailable
		}
		v, err := fetch(ctx)
		if err != nil {
			b.OnFailure()
			return zero, err
		}
		b.OnSuccess()
		return v, nil
	}
}

// WithRetry wraps fetch with retry.Do using the supplied configuration.
func WithRetry[V any](fetch Fetch[V], cfg retry.Config) Fetch[V] {
	return func(ctx context.Context) (V, error) {
		return retry.Do(ctx, cfg, func(ctx context.Context) (V, error) {
			return fetch(ctx)
		})
	}
}
