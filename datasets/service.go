// Package datasets exposes the stash.Datasets gRPC service: list, refresh
// and mutate named record collections backed by [dataset.Store]. It uses
// [grpc.ServiceDesc] registration so that no protobuf code generation is
// required; requests and responses ride the shared stash codec.
package datasets

import (
	"context"

	"google.golang.org/grpc"
)

// Handler is the interface a Datasets service implementation must satisfy.
// [StoreHandler] is the stock implementation.
type Handler interface {
	List(ctx context.Context, req *ListRequest) (*ListResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*RefreshResponse, error)
	Put(ctx context.Context, req *PutRequest) (*PutResponse, error)
	Delete(ctx context.Context, req *DeleteRequest) (*DeleteResponse, error)
}

// ServiceDesc is the grpc.ServiceDesc for the stash.Datasets service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "stash.Datasets",
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "List",
			Handler:    listHandler,
		},
		{
			MethodName: "Refresh",
			Handler:    refreshHandler,
		},
		{
			MethodName: "Put",
			Handler:    putHandler,
		},
		{
			MethodName: "Delete",
			Handler:    deleteHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stash/datasets.proto",
}

func listHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(ListRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).List(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/stash.Datasets/List",
	}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).List(ctx, r.(*ListRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func refreshHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(RefreshRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Refresh(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/stash.Datasets/Refresh",
	}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Refresh(ctx, r.(*RefreshRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func putHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(PutRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Put(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/stash.Datasets/Put",
	}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Put(ctx, r.(*PutRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func deleteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(DeleteRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Delete(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/stash.Datasets/Delete",
	}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Delete(ctx, r.(*DeleteRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// Register registers a Datasets service implementation on the given gRPC server.
func Register(s *grpc.Server, h Handler) {
	s.RegisterService(&ServiceDesc, h)
}
