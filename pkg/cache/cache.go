package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value cache with per-entry TTL.
//
// TTL semantics for Set: positive expires after the duration, zero uses the
// cache default, negative never expires.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Loader computes a value on a cache miss and says how long to keep it.
type Loader[V any] func(ctx context.Context) (V, time.Duration, error)

var loads singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with load.
// Concurrent misses for the same key share one load. Load errors are not
// cached; a failing Set is ignored and the loaded value is still returned.
//
// Keys share one flight group across caches, so callers namespace them
// ("access:user-123:dashboard:read").
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, load Loader[V]) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := loads.Do(key, func() (any, error) {
		v, ttl, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{val: v, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	l := res.(loaded[V])
	_ = c.Set(ctx, key, l.val, l.ttl)
	return l.val, nil
}

func marshal[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func unmarshal[V any](data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}
