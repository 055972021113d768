package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Bounded is a cost-bounded in-process byte cache backed by ristretto.
//
// It is deliberately not a [TTL]: ristretto copies nothing for us so
// Bounded clones values on the way in and out, evicts under cost pressure
// rather than only on expiry, and applies its per-entry TTL with
// ristretto's own timing. Use it for serialized payloads where copies are
// cheap and eviction is welcome; use TTL where the exact expiry and
// aliasing contract matters.
type Bounded struct {
	rc  *ristretto.Cache[string, []byte]
	ttl time.Duration
}

// NewBounded creates a Bounded cache holding at most maxCost entries
// (each entry costs 1). Entries live for ttl; a non-positive ttl falls
// back to DefaultTTL.
func NewBounded(maxCost int64, ttl time.Duration) (*Bounded, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Bounded{rc: rc, ttl: ttl}, nil
}

// Get retrieves a copy of the value stored under key.
func (b *Bounded) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := b.rc.Get(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

// Set stores a copy of val under key with the cache's configured TTL.
func (b *Bounded) Set(_ context.Context, key string, val []byte) {
	b.rc.SetWithTTL(key, bytes.Clone(val), 1, b.ttl)
	b.rc.Wait()
}

// Clear removes all entries.
func (b *Bounded) Clear() {
	b.rc.Clear()
}

// Close releases the underlying ristretto resources.
func (b *Bounded) Close() {
	b.rc.Close()
}
