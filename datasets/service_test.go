package datasets_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"

	"github.com/Keksclan/goAcornStash/dataset"
	"github.com/Keksclan/goAcornStash/datasets"
	"github.com/Keksclan/goAcornStash/policy"
	"github.com/Keksclan/goAcornStash/ratelimit"
	"github.com/Keksclan/goAcornStash/source"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

func startServer(t *testing.T, h datasets.Handler) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	datasets.Register(s, h)
	t.Cleanup(func() { s.Stop() })
	go func() { _ = s.Serve(lis) }()
	return lis
}

func dial(t *testing.T, lis *bufconn.Listener) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	st, _ := status.FromError(err)
	return st.Code()
}

func usersHandler(t *testing.T, opts ...datasets.HandlerOption) *datasets.StoreHandler {
	t.Helper()
	h := datasets.NewStoreHandler(opts...)
	h.Add(dataset.NewStore("users", source.Static([]dataset.Record{
		{ID: "1", Data: map[string]any{"name": "Ada"}},
		{ID: "2", Data: map[string]any{"name": "Grace"}},
	})))
	return h
}

func TestRegisterService(t *testing.T) {
	s := grpc.NewServer()
	datasets.Register(s, datasets.NewStoreHandler())
	info := s.GetServiceInfo()
	si, ok := info["stash.Datasets"]
	if !ok {
		t.Fatal("stash.Datasets service not registered")
	}
	want := map[string]bool{"List": false, "Refresh": false, "Put": false, "Delete": false}
	for _, m := range si.Methods {
		if _, ok := want[m.Name]; ok {
			want[m.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("%s method not found in service info", name)
		}
	}
}

func TestList_FetchesThenServesFromCache(t *testing.T) {
	lis := startServer(t, usersHandler(t))
	conn := dial(t, lis)

	first := new(datasets.ListResponse)
	if err := conn.Invoke(t.Context(), "/stash.Datasets/List", &datasets.ListRequest{Dataset: "users"}, first); err != nil {
		t.Fatalf("List RPC failed: %v", err)
	}
	if len(first.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(first.Records))
	}
	if first.FromCache {
		t.Fatal("first List should not come from cache")
	}

	second := new(datasets.ListResponse)
	if err := conn.Invoke(t.Context(), "/stash.Datasets/List", &datasets.ListRequest{Dataset: "users"}, second); err != nil {
		t.Fatalf("List RPC failed: %v", err)
	}
	if !second.FromCache {
		t.Fatal("second List should come from cache")
	}
}

func TestList_UnknownDataset(t *testing.T) {
	lis := startServer(t, usersHandler(t))
	conn := dial(t, lis)

	err := conn.Invoke(t.Context(), "/stash.Datasets/List", &datasets.ListRequest{Dataset: "orders"}, new(datasets.ListResponse))
	if codeOf(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", codeOf(err))
	}
}

func TestRefresh_AlwaysHitsOrigin(t *testing.T) {
	var calls atomic.Int64
	fetch := func(_ context.Context) ([]dataset.Record, error) {
		calls.Add(1)
		return []dataset.Record{{ID: "1"}}, nil
	}

	h := datasets.NewStoreHandler()
	h.Add(dataset.NewStore("users", fetch))

	lis := startServer(t, h)
	conn := dial(t, lis)

	for i := range 3 {
		resp := new(datasets.RefreshResponse)
		if err := conn.Invoke(t.Context(), "/stash.Datasets/Refresh", &datasets.RefreshRequest{Dataset: "users"}, resp); err != nil {
			t.Fatalf("Refresh %d failed: %v", i, err)
		}
		if len(resp.Records) != 1 {
			t.Fatalf("Refresh %d: expected 1 record, got %d", i, len(resp.Records))
		}
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 origin fetches, got %d", got)
	}
}

func TestRefresh_OriginDownIsUnavailable(t *testing.T) {
	h := datasets.NewStoreHandler()
	h.Add(dataset.NewStore("users", source.Failing[[]dataset.Record](errors.New("network down"))))

	lis := startServer(t, h)
	conn := dial(t, lis)

	err := conn.Invoke(t.Context(), "/stash.Datasets/Refresh", &datasets.RefreshRequest{Dataset: "users"}, new(datasets.RefreshResponse))
	if codeOf(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", codeOf(err))
	}
	st, _ := status.FromError(err)
	if st.Message() != "network down" {
		t.Fatalf("expected origin message to survive, got %q", st.Message())
	}
}

func TestRefresh_PerDatasetLimit(t *testing.T) {
	lis := startServer(t, usersHandler(t,
		datasets.WithRefreshLimit(ratelimit.NewPerKey(0.001, 1)),
	))
	conn := dial(t, lis)

	if err := conn.Invoke(t.Context(), "/stash.Datasets/Refresh", &datasets.RefreshRequest{Dataset: "users"}, new(datasets.RefreshResponse)); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	err := conn.Invoke(t.Context(), "/stash.Datasets/Refresh", &datasets.RefreshRequest{Dataset: "users"}, new(datasets.RefreshResponse))
	if codeOf(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", codeOf(err))
	}
}

func TestRefresh_PolicyOverridesUniformLimit(t *testing.T) {
	resolver := policy.NewResolver(
		policy.Group("tight").
			Exact("users").
			Policy(policy.Policy{Refresh: &policy.RefreshRule{PerSecond: 0.001, Burst: 1}}),
	)
	// Uniform limit is generous; the policy group is the tight one.
	lis := startServer(t, usersHandler(t,
		datasets.WithRefreshLimit(ratelimit.NewPerKey(1000, 100)),
		datasets.WithPolicy(resolver),
	))
	conn := dial(t, lis)

	if err := conn.Invoke(t.Context(), "/stash.Datasets/Refresh", &datasets.RefreshRequest{Dataset: "users"}, new(datasets.RefreshResponse)); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	err := conn.Invoke(t.Context(), "/stash.Datasets/Refresh", &datasets.RefreshRequest{Dataset: "users"}, new(datasets.RefreshResponse))
	if codeOf(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted from policy rule, got %v", codeOf(err))
	}
}

func TestPut_InsertAndDuplicate(t *testing.T) {
	lis := startServer(t, usersHandler(t))
	conn := dial(t, lis)

	req := &datasets.PutRequest{
		Dataset: "users",
		Record:  dataset.Record{ID: "3", Data: map[string]any{"name": "Edsger"}},
		Mode:    datasets.ModeInsert,
	}
	resp := new(datasets.PutResponse)
	if err := conn.Invoke(t.Context(), "/stash.Datasets/Put", req, resp); err != nil {
		t.Fatalf("Put RPC failed: %v", err)
	}
	if len(resp.Records) != 3 {
		t.Fatalf("expected 3 records after insert, got %d", len(resp.Records))
	}

	err := conn.Invoke(t.Context(), "/stash.Datasets/Put", req, new(datasets.PutResponse))
	if codeOf(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", codeOf(err))
	}
}

func TestPut_UpdateMissingRecord(t *testing.T) {
	lis := startServer(t, usersHandler(t))
	conn := dial(t, lis)

	req := &datasets.PutRequest{
		Dataset: "users",
		Record:  dataset.Record{ID: "99"},
		Mode:    datasets.ModeUpdate,
	}
	err := conn.Invoke(t.Context(), "/stash.Datasets/Put", req, new(datasets.PutResponse))
	if codeOf(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", codeOf(err))
	}
}

func TestPut_DefaultModeIsUpsert(t *testing.T) {
	lis := startServer(t, usersHandler(t))
	conn := dial(t, lis)

	req := &datasets.PutRequest{
		Dataset: "users",
		Record:  dataset.Record{ID: "1", Data: map[string]any{"name": "Ada Lovelace"}},
	}
	resp := new(datasets.PutResponse)
	if err := conn.Invoke(t.Context(), "/stash.Datasets/Put", req, resp); err != nil {
		t.Fatalf("Put RPC failed: %v", err)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("expected upsert to replace in place, got %d records", len(resp.Records))
	}
}

func TestPut_UnknownMode(t *testing.T) {
	lis := startServer(t, usersHandler(t))
	conn := dial(t, lis)

	req := &datasets.PutRequest{Dataset: "users", Record: dataset.Record{ID: "5"}, Mode: "merge"}
	err := conn.Invoke(t.Context(), "/stash.Datasets/Put", req, new(datasets.PutResponse))
	if codeOf(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", codeOf(err))
	}
}

func TestDelete_RemovesAndReportsMissing(t *testing.T) {
	lis := startServer(t, usersHandler(t))
	conn := dial(t, lis)

	resp := new(datasets.DeleteResponse)
	if err := conn.Invoke(t.Context(), "/stash.Datasets/Delete", &datasets.DeleteRequest{Dataset: "users", ID: "1"}, resp); err != nil {
		t.Fatalf("Delete RPC failed: %v", err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("expected 1 record after delete, got %d", len(resp.Records))
	}

	err := conn.Invoke(t.Context(), "/stash.Datasets/Delete", &datasets.DeleteRequest{Dataset: "users", ID: "1"}, new(datasets.DeleteResponse))
	if codeOf(err) != codes.NotFound {
		t.Fatalf("expected NotFound for repeated delete, got %v", codeOf(err))
	}
}

func TestList_OriginDownKeepsMessage(t *testing.T) {
	h := datasets.NewStoreHandler()
	h.Add(dataset.NewStore("users", source.Failing[[]dataset.Record](errors.New("network down"))))

	lis := startServer(t, h)
	conn := dial(t, lis)

	err := conn.Invoke(t.Context(), "/stash.Datasets/List", &datasets.ListRequest{Dataset: "users"}, new(datasets.ListResponse))
	if codeOf(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", codeOf(err))
	}
	st, _ := status.FromError(err)
	if st.Message() != "network down" {
		t.Fatalf("expected origin message to survive, got %q", st.Message())
	}
}
