// Package ratelimit provides fixed-window request counters shared by the
// rate-limit pipeline stage and the gateway HTTP middleware.
//
// A [Store] keeps one counter per key. [Store.Increment] adds one and starts a
// new window only when the key is missing or its window has elapsed, so the
// counter never outlives the window that created it. [Store.Get] reports zero
// for missing or expired keys.
//
// Three stores are provided:
//
//   - [Memory]: process-local, for tests and single-instance deployments.
//   - [Redis]: shared across instances; increment and expiry run in one Lua script.
//   - [Postgres]: shared across instances; increment is a single upsert.
//
// [Check] implements the check-then-count decision used by callers:
//
//	d, err := ratelimit.Check(ctx, store, "rate_limit:1.2.3.4:health", 100, time.Minute)
//	if err != nil {
//		// store unavailable; errors.Is(err, ratelimit.ErrStoreUnavailable)
//	}
//	if !d.Allowed {
//		// reject with 429
//	}
//
// Postgres counters need the table created by [Migrations]:
//
//	err := db.Migrate(ctx, pool, ratelimit.Migrations, "ratelimit_migrations", log)
package ratelimit
