package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript adds one and sets the expiry only for a fresh key.
// An expired key is already gone in Redis, so INCR returning 1 covers both cases.
var incrementScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Redis is a Store backed by Redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix namespaces keys as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = strings.TrimSuffix(prefix, ":")
	}
}

// NewRedis creates a Redis-backed store.
// The client should come from pkg/redis.Open.
//
// Example:
//
//	store := ratelimit.NewRedis(client, ratelimit.WithPrefix("rl"))
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, ErrEmptyKey
	}
	n, err := r.client.Get(ctx, r.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// Increment implements Store.
func (r *Redis) Increment(ctx context.Context, key string, window time.Duration) error {
	if err := validate(key, window); err != nil {
		return err
	}
	if err := incrementScript.Run(ctx, r.client, []string{r.key(key)}, window.Milliseconds()).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *Redis) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}
