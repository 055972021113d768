// Package contextx carries request-scoped values (the request ID and the
// dataset a request operates on) through context.Context without exposing
// the keys themselves.
package contextx

// contextKey is an unexported type used as context key to avoid collisions
// with keys defined in other packages.
type contextKey int

const (
	requestIDKey contextKey = iota
	datasetKey
)
