package cache

import "context"

// Bytes is the byte-level cache contract consumed by the server option
// layer. Both TTL (via [BytesFromTTL]) and [Bounded] satisfy it, so a
// server can carry either a faithful time-bounded cache or a cost-bounded
// one behind the same surface.
type Bytes interface {
	// Get retrieves a value by key. The boolean reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value under key. It never fails.
	Set(ctx context.Context, key string, val []byte)

	// Clear removes all entries.
	Clear()
}

// ttlBytes adapts a TTL[[]byte] to the Bytes interface. The context is
// accepted for interface symmetry only; a TTL cache never blocks on I/O.
type ttlBytes struct {
	c *TTL[[]byte]
}

// BytesFromTTL exposes a byte-valued TTL cache through the Bytes
// interface. The TTL aliasing contract carries over: Get returns the
// stored slice itself.
func BytesFromTTL(c *TTL[[]byte]) Bytes {
	return ttlBytes{c: c}
}

func (b ttlBytes) Get(_ context.Context, key string) ([]byte, bool) {
	return b.c.Get(key)
}

func (b ttlBytes) Set(_ context.Context, key string, val []byte) {
	b.c.Set(key, val)
}

func (b ttlBytes) Clear() {
	b.c.Clear()
}
