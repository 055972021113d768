// Package health provides a minimal built-in health check RPC suitable for
// liveness probes and demos. It uses [grpc.ServiceDesc] registration so that
// no protobuf code generation is required; the request and response types are
// plain Go structs carried by the shared stash codec.
package health

import (
	"context"
	"time"

	"github.com/Keksclan/goAcornStash/dataset"
	"github.com/Keksclan/goAcornStash/internal/wire"
	"google.golang.org/grpc"
)

// CheckRequest is the input for the Check method.
type CheckRequest struct{}

// DatasetStatus reports cache counters for a single dataset.
type DatasetStatus struct {
	Name            string `json:"name"`
	Records         int    `json:"records"`
	Hits            uint64 `json:"hits"`
	Misses          uint64 `json:"misses"`
	Expiries        uint64 `json:"expiries"`
	Refreshes       uint64 `json:"refreshes"`
	RefreshFailures uint64 `json:"refresh_failures"`
}

// CheckResponse is the output of the Check method.
type CheckResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Datasets      []DatasetStatus `json:"datasets,omitempty"`
}

func (*CheckRequest) StashMessage()  {}
func (*CheckResponse) StashMessage() {}

var _ wire.Message = (*CheckRequest)(nil)

// Handler is the interface that a health service implementation must satisfy.
type Handler interface {
	Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error)
}

// DefaultHandler returns a Handler that reports "serving", the process
// uptime, and cache counters for each registered store.
func DefaultHandler(stores ...*dataset.Store) Handler {
	return defaultHandler{started: time.Now(), stores: stores}
}

type defaultHandler struct {
	started time.Time
	stores  []*dataset.Store
}

func (h defaultHandler) Check(_ context.Context, _ *CheckRequest) (*CheckResponse, error) {
	resp := &CheckResponse{
		Status:        "serving",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	for _, s := range h.stores {
		stats := s.CacheStats()
		resp.Datasets = append(resp.Datasets, DatasetStatus{
			Name:            s.Name(),
			Records:         s.CacheLen(),
			Hits:            stats.Hits,
			Misses:          stats.Misses,
			Expiries:        stats.Expiries,
			Refreshes:       stats.Refreshes,
			RefreshFailures: stats.RefreshFailures,
		})
	}
	return resp, nil
}

// ServiceDesc is the grpc.ServiceDesc for the stash.Health service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "stash.Health",
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Check",
			Handler:    checkHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stash/health.proto",
}

func checkHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(CheckRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Check(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/stash.Health/Check",
	}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Check(ctx, r.(*CheckRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// Register registers a health service implementation on the given gRPC server.
func Register(s *grpc.Server, h Handler) {
	s.RegisterService(&ServiceDesc, h)
}
