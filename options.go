package goacornstash

import (
	"time"

	"github.com/Keksclan/goAcornStash/auth"
	"github.com/Keksclan/goAcornStash/cache"
	"github.com/Keksclan/goAcornStash/interceptors"
	"github.com/Keksclan/goAcornStash/ratelimit"
	"github.com/Keksclan/goAcornStash/tracing"
	"google.golang.org/grpc"
)

// Middleware execution order. Lower values run first, regardless of the
// order options are passed to NewServer.
const (
	orderRecovery  = 0
	orderRequestID = 10
	orderTracing   = 20
	orderAuth      = 30
	orderRateLimit = 40
	orderCustom    = 100
)

// Option configures a Server.
type Option func(*config)

// WithRecovery installs panic-recovery interceptors so that a panic inside
// a handler returns codes.Internal instead of crashing the process.
// Recovery always runs first in the chain.
func WithRecovery() Option {
	return func(c *config) {
		c.middlewares.Add(orderRecovery, interceptors.RecoveryUnary(), interceptors.RecoveryStream())
	}
}

// WithRequestID ensures every unary request carries a request ID in its
// context, generating one when the caller did not provide any.
func WithRequestID() Option {
	return func(c *config) {
		c.middlewares.Add(orderRequestID, interceptors.RequestIDUnary(), interceptors.RequestIDStream())
	}
}

// WithOpenTelemetry installs OpenTelemetry tracing interceptors configured
// by cfg. Passing nil yields no-op passthrough interceptors.
func WithOpenTelemetry(cfg *tracing.TracingConfig) Option {
	return func(c *config) {
		c.middlewares.Add(orderTracing, tracing.UnaryServerInterceptor(cfg), tracing.StreamServerInterceptor(cfg))
	}
}

// WithAuth installs authentication interceptors backed by fn. Requests that
// fn rejects fail with codes.Unauthenticated unless fn returns its own
// status error.
func WithAuth(fn auth.AuthFunc) Option {
	return func(c *config) {
		c.middlewares.Add(orderAuth, interceptors.AuthUnary(fn), interceptors.AuthStream(fn))
	}
}

// WithRateLimit installs a global token-bucket rate limit of rps requests
// per second with the given burst size.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *config) {
		l := ratelimit.NewLimiter(rps, burst)
		c.middlewares.Add(orderRateLimit, interceptors.RateLimitUnary(l), interceptors.RateLimitStream(l))
	}
}

// WithUnaryInterceptor appends a custom unary server interceptor. Custom
// interceptors run after the built-in middleware, in the order added.
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) Option {
	return func(c *config) {
		c.middlewares.Add(orderCustom, i, nil)
	}
}

// WithStreamInterceptor appends a custom stream server interceptor. Custom
// interceptors run after the built-in middleware, in the order added.
func WithStreamInterceptor(i grpc.StreamServerInterceptor) Option {
	return func(c *config) {
		c.middlewares.Add(orderCustom, nil, i)
	}
}

// WithCacheTTL attaches a time-bounded byte cache with the given entry
// lifetime to the server. Non-positive values fall back to
// cache.DefaultTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.cache = cache.BytesFromTTL(cache.NewTTL[[]byte](ttl))
	}
}

// WithCacheBounded attaches a cost-bounded byte cache to the server. The
// caller constructs it via [cache.NewBounded] and keeps ownership of
// Close.
func WithCacheBounded(b *cache.Bounded) Option {
	return func(c *config) {
		c.cache = b
	}
}
