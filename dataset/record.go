// Package dataset implements named record collections fronted by a TTL
// cache. A Store is the piece that talks to the cache on behalf of
// consumers: reads go through the cache and fall back to the origin fetch,
// forced refreshes bypass freshness entirely, and mutations read the
// current collection, derive a new one by record id, and write it back.
// The cache itself knows nothing about records or ids.
package dataset

// Record is one element of a cached collection. The payload is opaque to
// the store except for ID.
//
// IDs are compared with exact string equality everywhere. Callers feeding
// numeric identifiers from external input must stringify them before they
// reach the store; no coercion happens here.
type Record struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data,omitempty"`
}
