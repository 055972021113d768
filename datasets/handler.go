package datasets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Keksclan/goAcornStash/contextx"
	"github.com/Keksclan/goAcornStash/dataset"
	"github.com/Keksclan/goAcornStash/policy"
	"github.com/Keksclan/goAcornStash/ratelimit"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errRefreshLimited is allocated once to avoid per-request allocations on the hot path.
var errRefreshLimited = status.Error(codes.ResourceExhausted, "refresh rate limit exceeded")

// StoreHandler serves the stash.Datasets RPCs from a set of named
// [dataset.Store] values. Refreshes can be bounded per dataset either
// uniformly (WithRefreshLimit) or per policy group (WithPolicy).
type StoreHandler struct {
	mu     sync.RWMutex
	stores map[string]*dataset.Store

	refreshLimit *ratelimit.PerKey
	resolver     *policy.Resolver

	groupMu sync.Mutex
	groups  map[string]*ratelimit.Limiter
}

// HandlerOption configures a StoreHandler.
type HandlerOption func(*StoreHandler)

// WithRefreshLimit bounds Refresh calls per dataset with a uniform limiter.
func WithRefreshLimit(l *ratelimit.PerKey) HandlerOption {
	return func(h *StoreHandler) {
		h.refreshLimit = l
	}
}

// WithPolicy resolves dataset names against r; a matched group with a
// Refresh rule overrides the uniform refresh limit for that group.
func WithPolicy(r *policy.Resolver) HandlerOption {
	return func(h *StoreHandler) {
		h.resolver = r
	}
}

// NewStoreHandler creates a handler with no datasets registered.
func NewStoreHandler(opts ...HandlerOption) *StoreHandler {
	h := &StoreHandler{
		stores: make(map[string]*dataset.Store),
		groups: make(map[string]*ratelimit.Limiter),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Add registers a store under its dataset name. Re-adding a name replaces
// the previous store.
func (h *StoreHandler) Add(s *dataset.Store) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stores[s.Name()] = s
}

// Stores returns the registered stores in no particular order.
func (h *StoreHandler) Stores() []*dataset.Store {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*dataset.Store, 0, len(h.stores))
	for _, s := range h.stores {
		out = append(out, s)
	}
	return out
}

func (h *StoreHandler) store(name string) (*dataset.Store, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.stores[name]
	if !ok {
		return nil, status.Error(codes.NotFound, fmt.Sprintf("unknown dataset %q", name))
	}
	return s, nil
}

// allowRefresh consults the policy resolver first and falls back to the
// uniform per-dataset limiter. Unlimited when neither is configured.
func (h *StoreHandler) allowRefresh(name string) bool {
	if h.resolver != nil {
		if group, pol, ok := h.resolver.Resolve(name); ok && pol != nil && pol.Refresh != nil {
			return h.groupLimiter(group, pol.Refresh).Allow()
		}
	}
	if h.refreshLimit != nil {
		return h.refreshLimit.Allow(name)
	}
	return true
}

// groupLimiter returns (or lazily creates) a limiter for the resolved group.
func (h *StoreHandler) groupLimiter(group string, rule *policy.RefreshRule) *ratelimit.Limiter {
	h.groupMu.Lock()
	defer h.groupMu.Unlock()
	if l, ok := h.groups[group]; ok {
		return l
	}
	l := ratelimit.NewLimiter(rule.PerSecond, rule.Burst)
	h.groups[group] = l
	return l
}

// rpcError maps store and origin errors onto gRPC status codes. Origin
// failures keep their message so callers see what actually went wrong.
func rpcError(err error) error {
	switch {
	case errors.Is(err, dataset.ErrNoRecord):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, dataset.ErrDuplicateRecord):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}

// List returns the dataset's records, fetching from the origin when no
// live cached copy exists.
func (h *StoreHandler) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	s, err := h.store(req.Dataset)
	if err != nil {
		return nil, err
	}
	ctx = contextx.WithDataset(ctx, req.Dataset)

	recs, fromCache, err := s.List(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return &ListResponse{Records: recs, FromCache: fromCache}, nil
}

// Refresh refetches the dataset from its origin unconditionally.
func (h *StoreHandler) Refresh(ctx context.Context, req *RefreshRequest) (*RefreshResponse, error) {
	s, err := h.store(req.Dataset)
	if err != nil {
		return nil, err
	}
	if !h.allowRefresh(req.Dataset) {
		return nil, errRefreshLimited
	}
	ctx = contextx.WithDataset(ctx, req.Dataset)

	recs, err := s.ForceRefresh(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return &RefreshResponse{Records: recs}, nil
}

// Put writes a record according to the request mode (upsert by default).
func (h *StoreHandler) Put(ctx context.Context, req *PutRequest) (*PutResponse, error) {
	s, err := h.store(req.Dataset)
	if err != nil {
		return nil, err
	}
	ctx = contextx.WithDataset(ctx, req.Dataset)

	var recs []dataset.Record
	switch req.Mode {
	case ModeInsert:
		recs, err = s.Insert(ctx, req.Record)
	case ModeUpdate:
		recs, err = s.Update(ctx, req.Record)
	case ModeUpsert, "":
		recs, err = s.Upsert(ctx, req.Record)
	default:
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("unknown put mode %q", req.Mode))
	}
	if err != nil {
		return nil, rpcError(err)
	}
	return &PutResponse{Records: recs}, nil
}

// Delete removes a record from the dataset by id.
func (h *StoreHandler) Delete(ctx context.Context, req *DeleteRequest) (*DeleteResponse, error) {
	s, err := h.store(req.Dataset)
	if err != nil {
		return nil, err
	}
	ctx = contextx.WithDataset(ctx, req.Dataset)

	recs, err := s.Delete(ctx, req.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	return &DeleteResponse{Records: recs}, nil
}
