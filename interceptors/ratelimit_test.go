package interceptors

import (
	"context"
	"testing"

	"github.com/Keksclan/goAcornStash/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// okHandler is a trivial handler that always succeeds.
func okHandler(_ context.Context, _ any) (any, error) { return "ok", nil }

func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	st, _ := status.FromError(err)
	return st.Code()
}

func TestRateLimitUnary_RejectsWhenExhausted(t *testing.T) {
	global := ratelimit.NewLimiter(0.001, 2) // burst 2, nearly no refill
	ic := RateLimitUnary(global)

	info := &grpc.UnaryServerInfo{FullMethod: "/stash.Datasets/List"}

	// First two should pass (burst).
	for i := range 2 {
		_, err := ic(t.Context(), nil, info, okHandler)
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	// Third should be rejected.
	_, err := ic(t.Context(), nil, info, okHandler)
	if codeOf(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", codeOf(err))
	}
}

func TestRateLimitStream_RejectsWhenExhausted(t *testing.T) {
	global := ratelimit.NewLimiter(0.001, 1)
	ic := RateLimitStream(global)

	info := &grpc.StreamServerInfo{FullMethod: "/stash.Datasets/Watch"}
	handler := func(_ any, _ grpc.ServerStream) error { return nil }

	if err := ic(nil, nil, info, handler); err != nil {
		t.Fatalf("first request: unexpected error: %v", err)
	}
	err := ic(nil, nil, info, handler)
	if codeOf(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", codeOf(err))
	}
}
