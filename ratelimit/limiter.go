// Package ratelimit provides token-bucket rate limiters backed by
// golang.org/x/time/rate: a single global limiter used as a server-wide
// request gate, and a per-key variant used to bound forced refreshes per
// dataset.
package ratelimit

import "golang.org/x/time/rate"

// Limiter wraps a token-bucket limiter that decides whether an incoming
// request should be allowed.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter creates a Limiter that permits rps requests per second with the
// given burst size.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether a single request may proceed.
func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}
