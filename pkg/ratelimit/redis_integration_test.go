//go:build integration

package ratelimit_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/pkg/ratelimit"
	"github.com/dmitrymomot/rpcgate/pkg/redis"
)

func TestRedis_Integration(t *testing.T) {
	ctx := context.Background()

	cfg := redis.DefaultConfig()
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.URL = url
	}
	client, err := redis.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := ratelimit.NewRedis(client, ratelimit.WithPrefix("rpcgate-test:"+uuid.NewString()))

	t.Run("counts and expires", func(t *testing.T) {
		require.NoError(t, store.Increment(ctx, "k", 300*time.Millisecond))
		require.NoError(t, store.Increment(ctx, "k", 300*time.Millisecond))

		n, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		time.Sleep(400 * time.Millisecond)
		n, err = store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("concurrent increments", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.Increment(ctx, "shared", time.Minute)
			}()
		}
		wg.Wait()

		n, err := store.Get(ctx, "shared")
		require.NoError(t, err)
		assert.Equal(t, int64(100), n)
	})

	t.Run("check enforces limit", func(t *testing.T) {
		for range 5 {
			d, err := ratelimit.Check(ctx, store, "limited", 5, time.Minute)
			require.NoError(t, err)
			require.True(t, d.Allowed)
		}
		d, err := ratelimit.Check(ctx, store, "limited", 5, time.Minute)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	})
}
