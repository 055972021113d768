// Package cache provides the in-memory caches used by goAcornStash.
//
// The centerpiece is [TTL], a time-bounded cache that holds exactly one
// timestamped value per key and expires entries lazily on read. [Bounded]
// is a cost-bounded byte cache for serialized payloads, and [Flight] adds
// optional per-key coalescing of concurrent refreshes on top of a TTL
// cache.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the entry lifetime used when NewTTL is given a
// non-positive duration.
const DefaultTTL = 5 * time.Minute

// entry is a stored value together with the time it was stored.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Stats holds cumulative counters for a TTL cache. Counters only ever
// increase; Expired reads are counted both as an expiry and as a miss.
type Stats struct {
	Hits            uint64
	Misses          uint64
	Expiries        uint64
	Refreshes       uint64
	RefreshFailures uint64
}

// TTL is a time-bounded in-memory cache mapping string keys to values of
// type V. Every entry carries the time it was stored; an entry is live
// while now-storedAt <= ttl and is removed the first time a Get observes
// it past that bound. There is no background sweeper and no memory-bound
// eviction; the only thing that removes an entry is an expired Get or
// Clear.
//
// Get returns the stored value itself, not a copy. When V is a slice, map
// or pointer type the caller and the cache share the same backing storage;
// mutating a retrieved value mutates the cached one. dataset.Store relies
// on exactly this to mutate a collection in place and write it back.
//
// All methods are safe for concurrent use. Set, Get and Clear never fail
// and never block on anything but the internal mutex; Refresh blocks only
// on the caller-supplied fetch.
type TTL[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	nowFunc func() time.Time // for testing; defaults to time.Now

	stats Stats
}

// NewTTL creates a TTL cache whose entries live for the given duration.
// A non-positive ttl falls back to DefaultTTL. The lifetime is fixed for
// the life of the cache.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Set stores value under key, overwriting any existing entry and resetting
// its timestamp to now. Set always succeeds.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.nowFunc()}
}

// Get returns the value stored under key. The boolean reports a hit.
//
// An entry whose age exceeds the cache's ttl (strictly; an entry aged
// exactly ttl is still live) is removed and reported as a miss in the
// same step, so an expired entry is never observable after the read that
// found it expired. A hit does not touch the entry's timestamp: reads do
// not extend an entry's life.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	if c.nowFunc().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		c.stats.Expiries++
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// Clear removes all entries.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len returns the number of entries currently stored, including entries
// that are past their ttl but have not yet been read (lazy eviction only
// removes an entry when a Get observes it expired).
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Refresh invokes fetch exactly once and, on success, stores the result
// under key and returns it. On failure the fetch error is returned
// unchanged and the cache is not touched.
//
// Refresh does not consult the cache first: it always fetches and always
// overwrites on success, even when a live entry exists. It is a forced
// refresh, not a miss-only load.
//
// The fetch runs outside the cache's mutex with the caller's context; the
// cache imposes no timeout and cannot abort a fetch once started. Two
// concurrent Refresh calls for the same key both invoke their fetch and
// the later Set wins. Wrap the cache in a [Flight] when coalescing is
// wanted.
func (c *TTL[V]) Refresh(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	value, err := fetch(ctx)
	if err != nil {
		c.mu.Lock()
		c.stats.RefreshFailures++
		c.mu.Unlock()
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: c.nowFunc()}
	c.stats.Refreshes++
	c.mu.Unlock()
	return value, nil
}

// Stats returns a snapshot of the cache's cumulative counters.
func (c *TTL[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
