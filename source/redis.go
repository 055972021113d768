package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// FromRedis returns a Fetch that reads the JSON document stored at key
// and decodes it into V. A missing key yields ErrNotFound; connection
// errors surface as-is so breaker and retry wrappers can see them.
//
// Redis plays the origin role here, the remote store the cache absorbs
// reads from, not a second cache tier.
func FromRedis[V any](client *redis.Client, key string) Fetch[V] {
	return func(ctx context.Context) (V, error) {
		var zero V

		data, err := client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return zero, err
		}

		var v V
		if err := json.Unmarshal(data, &v); err != nil {
			return zero, fmt.Errorf("source: decode %s: %w", key, err)
		}
		return v, nil
	}
}
