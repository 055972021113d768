package dataset

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Keksclan/goAcornStash/cache"
	"github.com/Keksclan/goAcornStash/metrics"
	"github.com/Keksclan/goAcornStash/retry"
	"github.com/Keksclan/goAcornStash/source"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Keksclan/goAcornStash/dataset"

// ErrNoRecord reports that no record with the given id exists in the
// collection.
var ErrNoRecord = errors.New("dataset: no such record")

// ErrDuplicateRecord reports an Insert whose id is already taken.
var ErrDuplicateRecord = errors.New("dataset: duplicate record id")

// Store manages one named dataset: a record collection cached under the
// dataset name and refetched from its origin when the cached copy is
// absent or expired.
//
// Mutations are serialized by a store-level mutex so that concurrent
// read-modify-write sequences cannot interleave. Reads and refreshes rely
// on the cache's own locking only, so a refresh landing between a
// mutation's read and write is still last-write-wins, the same contract
// the cache itself gives.
type Store struct {
	name   string
	cache  *cache.TTL[[]Record]
	flight *cache.Flight[[]Record]
	fetch  source.Fetch[[]Record]
	rec    *metrics.Recorder
	tracer trace.Tracer

	mu sync.Mutex // serializes mutations
}

type storeConfig struct {
	ttl          time.Duration
	singleFlight bool
	retryCfg     *retry.Config
	rec          *metrics.Recorder
	tracer       trace.Tracer
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

// WithTTL sets the lifetime of the cached collection. Non-positive values
// fall back to cache.DefaultTTL.
func WithTTL(d time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.ttl = d
	}
}

// WithSingleFlight coalesces concurrent refreshes of the dataset into a
// single origin fetch. Off by default: the baseline contract is that
// concurrent refreshes all fetch and the last write wins.
func WithSingleFlight() StoreOption {
	return func(c *storeConfig) {
		c.singleFlight = true
	}
}

// WithRetry retries failed origin fetches according to cfg. The retries
// happen inside the fetch handed to the cache; the cache itself still
// sees a single fetch that either succeeds or fails.
func WithRetry(cfg retry.Config) StoreOption {
	return func(c *storeConfig) {
		c.retryCfg = &cfg
	}
}

// WithMetrics records cache hits, misses and refresh outcomes to r.
func WithMetrics(r *metrics.Recorder) StoreOption {
	return func(c *storeConfig) {
		c.rec = r
	}
}

// WithTracerProvider sets the provider used for refresh spans. The global
// provider (a no-op unless an SDK is installed) is used by default.
func WithTracerProvider(tp trace.TracerProvider) StoreOption {
	return func(c *storeConfig) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// NewStore creates a Store for the named dataset backed by fetch.
func NewStore(name string, fetch source.Fetch[[]Record], opts ...StoreOption) *Store {
	var cfg storeConfig
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.retryCfg != nil {
		fetch = source.WithRetry(fetch, *cfg.retryCfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}

	s := &Store{
		name:   name,
		cache:  cache.NewTTL[[]Record](cfg.ttl),
		fetch:  fetch,
		rec:    cfg.rec,
		tracer: cfg.tracer,
	}
	if cfg.singleFlight {
		s.flight = cache.NewFlight(s.cache)
	}
	return s
}

// Name returns the dataset name.
func (s *Store) Name() string {
	return s.name
}

// List returns the current collection. A live cached copy is served as-is
// (fromCache true); otherwise the origin is fetched and the result cached
// (fromCache false).
func (s *Store) List(ctx context.Context) (recs []Record, fromCache bool, err error) {
	return s.current(ctx)
}

// ForceRefresh fetches the collection from the origin and replaces the
// cached copy, regardless of whether a live copy exists. On fetch failure
// the error is returned as-is and the cached copy, if any, survives.
func (s *Store) ForceRefresh(ctx context.Context) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "stash.dataset.refresh",
		trace.WithAttributes(attribute.String("stash.dataset", s.name)))
	defer span.End()

	start := time.Now()
	recs, err := s.refresh(ctx)
	s.rec.Refresh(s.name, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	return recs, err
}

// Insert adds rec to the collection. It fails with ErrDuplicateRecord if
// the id is already present.
func (s *Store) Insert(ctx context.Context, rec Record) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(recs, rec.ID) >= 0 {
		return nil, ErrDuplicateRecord
	}

	recs = append(recs, rec)
	s.cache.Set(s.name, recs)
	return recs, nil
}

// Update replaces the record with rec's id. It fails with ErrNoRecord if
// no such record exists.
func (s *Store) Update(ctx context.Context, rec Record) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(recs, rec.ID)
	if i < 0 {
		return nil, ErrNoRecord
	}

	recs[i] = rec
	s.cache.Set(s.name, recs)
	return recs, nil
}

// Upsert inserts rec or, when its id already exists, replaces the
// existing record.
func (s *Store) Upsert(ctx context.Context, rec Record) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	if i := indexOf(recs, rec.ID); i >= 0 {
		recs[i] = rec
	} else {
		recs = append(recs, rec)
	}
	s.cache.Set(s.name, recs)
	return recs, nil
}

// Delete removes the record with the given id by writing back a filtered
// collection. It fails with ErrNoRecord if no such record exists.
func (s *Store) Delete(ctx context.Context, id string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(recs, id) < 0 {
		return nil, ErrNoRecord
	}

	out := make([]Record, 0, len(recs)-1)
	for _, r := range recs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	s.cache.Set(s.name, out)
	return out, nil
}

// Clear drops the cached collection; the next read refetches from the
// origin.
func (s *Store) Clear() {
	s.cache.Clear()
}

// CacheStats returns the counters of the underlying cache.
func (s *Store) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// CacheLen returns the number of entries in the underlying cache (0 or 1
// for a single dataset).
func (s *Store) CacheLen() int {
	return s.cache.Len()
}

// current returns the live cached collection or, when absent, fetches and
// caches it.
func (s *Store) current(ctx context.Context) ([]Record, bool, error) {
	if recs, ok := s.cache.Get(s.name); ok {
		s.rec.Hit(s.name)
		return recs, true, nil
	}
	s.rec.Miss(s.name)

	recs, err := s.refresh(ctx)
	if err != nil {
		return nil, false, err
	}
	return recs, false, nil
}

func (s *Store) refresh(ctx context.Context) ([]Record, error) {
	if s.flight != nil {
		return s.flight.Refresh(ctx, s.name, s.fetch)
	}
	return s.cache.Refresh(ctx, s.name, s.fetch)
}

// indexOf returns the position of the record with the given id, or -1.
func indexOf(recs []Record, id string) int {
	for i, r := range recs {
		if r.ID == id {
			return i
		}
	}
	return -1
}
