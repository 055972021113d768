// Package wire registers the codec shared by the stash gRPC services.
//
// The service request/response types are plain Go structs (not generated
// protobuf messages), so the package installs a thin codec wrapper that
// JSON-encodes any type implementing the [Message] marker while delegating
// all other messages to the standard proto codec. A single shared codec
// keeps the services from clobbering each other's registration; importing
// any service package activates it.
package wire

import (
	"encoding/json"
	"fmt"

	grpcEncoding "google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // ensure default proto codec is registered first
	"google.golang.org/protobuf/proto"
)

// Message marks a plain struct as JSON-encoded on the wire. Service
// packages implement it on their request and response types.
type Message interface {
	StashMessage()
}

func init() {
	// Replace the default proto codec with a wrapper that JSON-encodes
	// stash types and delegates all other (protobuf) messages to proto.Marshal.
	grpcEncoding.RegisterCodec(stashCodec{})
}

// stashCodec wraps the default proto codec. It handles Message types via
// JSON, and delegates all other types to proto.Marshal/Unmarshal.
type stashCodec struct{}

func (stashCodec) Name() string { return "proto" }

func (stashCodec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(Message); ok {
		return json.Marshal(v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("stash codec: unsupported message type %T", v)
}

func (stashCodec) Unmarshal(data []byte, v any) error {
	if _, ok := v.(Message); ok {
		return json.Unmarshal(data, v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("stash codec: unsupported message type %T", v)
}
