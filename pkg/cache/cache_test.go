package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/pkg/cache"
)

type clock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ttl", func(t *testing.T) {
		t.Parallel()

		clk := &clock{now: time.Unix(0, 0)}
		c := cache.NewMemory[string](cache.WithClock(clk.Now), cache.WithDefaultTTL(time.Minute))

		require.NoError(t, c.Set(ctx, "default", "a", 0))
		require.NoError(t, c.Set(ctx, "short", "b", time.Second))
		require.NoError(t, c.Set(ctx, "forever", "c", -1))

		clk.Advance(time.Second)
		_, err := c.Get(ctx, "short")
		assert.ErrorIs(t, err, cache.ErrNotFound)
		v, err := c.Get(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, "a", v)

		clk.Advance(time.Hour)
		_, err = c.Get(ctx, "default")
		assert.ErrorIs(t, err, cache.ErrNotFound)
		v, err = c.Get(ctx, "forever")
		require.NoError(t, err)
		assert.Equal(t, "c", v)
	})

	t.Run("lru eviction", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithMaxEntries(2))
		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		_, err := c.Get(ctx, "a")
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, "c", 3, 0))

		assert.Equal(t, 2, c.Len())
		_, err = c.Get(ctx, "b")
		assert.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "a")
		assert.NoError(t, err)
	})

	t.Run("delete and close", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Delete(ctx, "a"))
		_, err := c.Get(ctx, "a")
		assert.ErrorIs(t, err, cache.ErrNotFound)

		require.NoError(t, c.Close())
		assert.ErrorIs(t, c.Set(ctx, "a", 1, 0), cache.ErrClosed)
		_, err = c.Get(ctx, "a")
		assert.ErrorIs(t, err, cache.ErrClosed)
	})
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("concurrent misses share a load", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[bool]()
		var calls atomic.Int32
		load := func(context.Context) (bool, time.Duration, error) {
			calls.Add(1)
			time.Sleep(10 * time.Millisecond)
			return true, 0, nil
		}

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := cache.GetOrSet(ctx, c, "getorset:shared", load)
				assert.NoError(t, err)
				assert.True(t, v)
			}()
		}
		wg.Wait()
		loadsBefore := calls.Load()
		require.Positive(t, loadsBefore)
		assert.Less(t, loadsBefore, int32(20))

		v, err := cache.GetOrSet(ctx, c, "getorset:shared", load)
		require.NoError(t, err)
		assert.True(t, v)
		assert.Equal(t, loadsBefore, calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[bool]()
		boom := errors.New("authority down")
		_, err := cache.GetOrSet(ctx, c, "getorset:error", func(context.Context) (bool, time.Duration, error) {
			return false, 0, boom
		})
		assert.ErrorIs(t, err, boom)

		v, err := cache.GetOrSet(ctx, c, "getorset:error", func(context.Context) (bool, time.Duration, error) {
			return true, 0, nil
		})
		require.NoError(t, err)
		assert.True(t, v)
	})
}
