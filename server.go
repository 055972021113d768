// Package goacornstash assembles a gRPC server around a set of TTL-cached
// datasets: stores front their origins with time-bounded caches, the
// stash.Datasets service exposes them over the wire, and functional
// options layer middleware (recovery, request IDs, tracing, auth, rate
// limiting) on top.
package goacornstash

import (
	"net/http"

	"github.com/Keksclan/goAcornStash/cache"
	"github.com/Keksclan/goAcornStash/datasets"
	"github.com/Keksclan/goAcornStash/health"
	"github.com/Keksclan/goAcornStash/interceptors"
	"github.com/Keksclan/goAcornStash/internal/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

// Server is a composable wrapper around a [grpc.Server] that layers
// middleware via functional [Option] values passed to [NewServer].
//
// After construction the underlying gRPC server is available through
// [Server.GRPC] so that service implementations can be registered normally:
//
//	srv := stash.NewServer(stash.WithRecovery())
//	datasets.Register(srv.GRPC(), handler)
type Server struct {
	grpcServer *grpc.Server
	cache      cache.Bytes
}

// NewServer creates a new [Server] by applying the supplied functional
// [Option] values and wiring the resulting unary and stream interceptor
// chains into [grpc.NewServer]. Middleware execution order is determined by
// fixed priority levels (see package-level constants), not by the order
// options are passed.
//
// Example:
//
//	srv := stash.NewServer(
//		stash.WithRecovery(),
//		stash.WithRateLimit(500, 100),
//		stash.WithAuth(auth.StaticToken(token)),
//		stash.WithCacheTTL(5*time.Minute),
//	)
func NewServer(opts ...Option) *Server {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	unary, stream := cfg.middlewares.Build()
	serverOpts := core.BuildServerOptions(unary, stream, interceptors.ChainUnary, interceptors.ChainStream)

	return &Server{
		grpcServer: grpc.NewServer(serverOpts...),
		cache:      cfg.cache,
	}
}

// GRPC returns the underlying *grpc.Server so callers can register services.
func (s *Server) GRPC() *grpc.Server {
	return s.grpcServer
}

// Cache returns the byte cache configured via WithCacheTTL or
// WithCacheBounded. It returns nil if no cache was configured.
func (s *Server) Cache() cache.Bytes {
	return s.cache
}

// RegisterDatasets registers the built-in stash.Datasets service on the
// underlying gRPC server using the supplied [datasets.Handler].
func (s *Server) RegisterDatasets(h datasets.Handler) {
	datasets.Register(s.grpcServer, h)
}

// RegisterHealth registers the built-in stash.Health service on the
// underlying gRPC server using the supplied [health.Handler].
func (s *Server) RegisterHealth(h health.Handler) {
	health.Register(s.grpcServer, h)
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func (s *Server) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
