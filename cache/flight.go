package cache

import (
	"context"
	"sync"
)

// flightCall tracks one in-flight refresh that late arrivals wait on.
type flightCall[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// Flight coalesces concurrent refreshes of the same key into a single
// fetch. The underlying TTL cache makes no such guarantee on its own
// (concurrent TTL.Refresh calls all fetch and the last Set wins), so
// Flight is the opt-in upgrade for callers that want one fetch per key at
// a time. Joiners receive the leader's result (the same value, not a
// copy) or its error.
type Flight[V any] struct {
	cache *TTL[V]

	mu       sync.Mutex
	inflight map[string]*flightCall[V]
}

// NewFlight wraps a TTL cache with per-key refresh coalescing.
func NewFlight[V any](c *TTL[V]) *Flight[V] {
	return &Flight[V]{
		cache:    c,
		inflight: make(map[string]*flightCall[V]),
	}
}

// Cache returns the wrapped TTL cache.
func (f *Flight[V]) Cache() *TTL[V] {
	return f.cache
}

// Refresh behaves like TTL.Refresh except that a Refresh arriving while
// another Refresh for the same key is still fetching joins it instead of
// fetching again. The leader's context is the one the fetch sees; joiners
// waiting on it are not released early when their own context ends.
func (f *Flight[V]) Refresh(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	f.mu.Lock()
	if c, ok := f.inflight[key]; ok {
		f.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err
	}

	c := &flightCall[V]{}
	c.wg.Add(1)
	f.inflight[key] = c
	f.mu.Unlock()

	c.val, c.err = f.cache.Refresh(ctx, key, fetch)
	c.wg.Done()

	f.mu.Lock()
	delete(f.inflight, key)
	f.mu.Unlock()

	return c.val, c.err
}
