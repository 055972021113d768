// Package auth provides the authentication function type used by the
// optional authentication middleware.
package auth

import (
	"context"
	"errors"

	"google.golang.org/grpc/metadata"
)

// ErrInvalidToken is returned by StaticToken when the authorization
// metadata is missing or does not match the configured token.
var ErrInvalidToken = errors.New("auth: invalid token")

// AuthFunc is a user-supplied callback that authenticates a gRPC request.
// It receives the request context, the full method name, and the incoming
// metadata.  On success it returns a (possibly enriched) context; on failure
// it returns an error.
//
// The library does NOT parse tokens beyond what StaticToken offers; anything
// more elaborate is the responsibility of the AuthFunc implementation.
type AuthFunc func(ctx context.Context, fullMethod string, md metadata.MD) (context.Context, error)

// StaticToken returns an AuthFunc that accepts requests whose
// "authorization" metadata equals the given token. It is meant for
// deployments where a single shared secret guards the mutation surface.
func StaticToken(token string) AuthFunc {
	return func(ctx context.Context, _ string, md metadata.MD) (context.Context, error) {
		vals := md.Get("authorization")
		if len(vals) == 0 || vals[0] != token {
			return ctx, ErrInvalidToken
		}
		return ctx, nil
	}
}
