package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// ReadThrough returns the cached value for key, or computes it via fetch and
// populates the cache. Absent and malformed payloads are both treated as a
// miss; a failed cache write is logged and otherwise ignored, so cache outages
// degrade latency, never correctness. Concurrent misses on the same key may
// each call fetch; de-duplication is deliberately not provided.
func ReadThrough[T any](
	ctx context.Context,
	c Cache[json.RawMessage],
	key Key,
	ttl time.Duration,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	encoded := key.Encode()

	if raw, err := c.Get(ctx, encoded); err == nil {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if raw, err := json.Marshal(value); err == nil {
		if err := c.Set(ctx, encoded, raw, ttl); err != nil {
			log.Printf("cache: failed to store %s: %v", encoded, err)
		}
	}

	return value, nil
}
