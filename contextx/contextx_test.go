package contextx

import "testing"

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(t.Context(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Fatalf("got %q, want %q", got, "req-123")
	}
}

func TestRequestIDAbsent(t *testing.T) {
	if got := RequestIDFromContext(t.Context()); got != "" {
		t.Fatalf("got %q, want empty string", got)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	ctx := WithDataset(t.Context(), "users")
	if got := DatasetFromContext(ctx); got != "users" {
		t.Fatalf("got %q, want %q", got, "users")
	}
}

func TestDatasetAbsent(t *testing.T) {
	if got := DatasetFromContext(t.Context()); got != "" {
		t.Fatalf("got %q, want empty string", got)
	}
}

func TestKeysDoNotCollide(t *testing.T) {
	ctx := WithRequestID(WithDataset(t.Context(), "users"), "req-1")
	if got := DatasetFromContext(ctx); got != "users" {
		t.Fatalf("dataset = %q, want %q", got, "users")
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("request id = %q, want %q", got, "req-1")
	}
}
