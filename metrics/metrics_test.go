package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Hit("users")
	r.Hit("users")
	r.Miss("users")
	r.Refresh("users", 10*time.Millisecond, nil)
	r.Refresh("users", 10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(r.hits.WithLabelValues("users")); got != 2 {
		t.Fatalf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.misses.WithLabelValues("users")); got != 1 {
		t.Fatalf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.refreshes.WithLabelValues("users")); got != 2 {
		t.Fatalf("refreshes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.refreshFailures.WithLabelValues("users")); got != 1 {
		t.Fatalf("refresh failures = %v, want 1", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Hit("users")
	r.Miss("users")
	r.Refresh("users", time.Millisecond, nil)
}
