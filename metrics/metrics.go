// Package metrics exposes Prometheus instrumentation for dataset caches.
// A Recorder is handed to dataset.Store via dataset.WithMetrics; a nil
// *Recorder is valid and records nothing, so instrumentation stays
// optional.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for one registry. All methods are safe on
// a nil receiver.
type Recorder struct {
	hits            *prometheus.CounterVec
	misses          *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshFailures *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stash",
			Name:      "cache_hits_total",
			Help:      "Dataset reads served from the cache.",
		}, []string{"dataset"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stash",
			Name:      "cache_misses_total",
			Help:      "Dataset reads that fell through to the origin.",
		}, []string{"dataset"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stash",
			Name:      "refreshes_total",
			Help:      "Completed dataset refreshes, successful or not.",
		}, []string{"dataset"}),
		refreshFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stash",
			Name:      "refresh_failures_total",
			Help:      "Dataset refreshes whose origin fetch failed.",
		}, []string{"dataset"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stash",
			Name:      "refresh_duration_seconds",
			Help:      "Wall-clock duration of dataset refreshes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dataset"}),
	}

	reg.MustRegister(r.hits, r.misses, r.refreshes, r.refreshFailures, r.refreshDuration)
	return r
}

// Hit records a cache hit for dataset.
func (r *Recorder) Hit(dataset string) {
	if r == nil {
		return
	}
	r.hits.WithLabelValues(dataset).Inc()
}

// Miss records a cache miss for dataset.
func (r *Recorder) Miss(dataset string) {
	if r == nil {
		return
	}
	r.misses.WithLabelValues(dataset).Inc()
}

// Refresh records one completed refresh for dataset with its duration and
// outcome.
func (r *Recorder) Refresh(dataset string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.refreshes.WithLabelValues(dataset).Inc()
	r.refreshDuration.WithLabelValues(dataset).Observe(d.Seconds())
	if err != nil {
		r.refreshFailures.WithLabelValues(dataset).Inc()
	}
}
