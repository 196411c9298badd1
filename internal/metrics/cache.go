package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/marketpulse/marketpulse/internal/cache"
)

// Lookup results.
const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupError = "error"
)

// Ensure InstrumentedCache implements Cache interface at compile time
var _ cache.Cache[struct{}] = (*InstrumentedCache[struct{}])(nil)

// InstrumentedCache decorates a Cache with hit/miss/error counters. Every
// other operation passes through untouched.
type InstrumentedCache[T any] struct {
	inner    cache.Cache[T]
	recorder Recorder
}

// InstrumentCache wraps inner so its lookups and writes are recorded.
func InstrumentCache[T any](inner cache.Cache[T], recorder Recorder) *InstrumentedCache[T] {
	return &InstrumentedCache[T]{inner: inner, recorder: recorder}
}

func (c *InstrumentedCache[T]) Get(ctx context.Context, key string) (T, error) {
	value, err := c.inner.Get(ctx, key)
	switch {
	case err == nil:
		c.recorder.RecordCacheLookup(lookupHit)
	case errors.Is(err, cache.ErrCacheMiss):
		c.recorder.RecordCacheLookup(lookupMiss)
	default:
		c.recorder.RecordCacheLookup(lookupError)
	}
	return value, err
}

func (c *InstrumentedCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, value, ttl)
	c.recorder.RecordCacheWrite(err == nil)
	return err
}

func (c *InstrumentedCache[T]) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *InstrumentedCache[T]) DeleteByPrefix(ctx context.Context, prefix string) error {
	return c.inner.DeleteByPrefix(ctx, prefix)
}

func (c *InstrumentedCache[T]) Close() error {
	return c.inner.Close()
}

func (c *InstrumentedCache[T]) Health(ctx context.Context) error {
	return c.inner.Health(ctx)
}
