package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// PerKey manages one token-bucket limiter per key, created lazily on first
// use. All keys share the same rate and burst; the intended use is one
// bucket per dataset so a hot refresh button on one dataset cannot starve
// refreshes of another.
type PerKey struct {
	rps   float64
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPerKey creates a PerKey limiter permitting rps events per second with
// the given burst size for each distinct key.
func NewPerKey(rps float64, burst int) *PerKey {
	return &PerKey{
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a single event for key may proceed.
func (p *PerKey) Allow(key string) bool {
	p.mu.Lock()
	lim, ok := p.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(p.rps), p.burst)
		p.limiters[key] = lim
	}
	p.mu.Unlock()

	return lim.Allow()
}
