// Package cache provides a small TTL cache with an in-process LRU backend
// and a Redis backend, plus GetOrSet for deduplicated loads.
//
// It is used to remember resource-access decisions:
//
//	decisions := cache.NewMemory[bool](cache.WithDefaultTTL(30 * time.Second))
//	ok, err := cache.GetOrSet(ctx, decisions, "access:user-123:dashboard:read",
//	    func(ctx context.Context) (bool, time.Duration, error) {
//	        ok, err := authority.Check(ctx, "user-123", "dashboard", "read")
//	        return ok, 0, err
//	    })
package cache
