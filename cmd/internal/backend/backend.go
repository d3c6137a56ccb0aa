// Package backend opens the rate-limit counter store selected by
// configuration together with its lifecycle hooks.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/rpcgate/pkg/cache"
	"github.com/dmitrymomot/rpcgate/pkg/db"
	"github.com/dmitrymomot/rpcgate/pkg/health"
	"github.com/dmitrymomot/rpcgate/pkg/ratelimit"
	"github.com/dmitrymomot/rpcgate/pkg/redis"
	"github.com/dmitrymomot/rpcgate/pkg/scheduler"
)

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// ErrUnknownStore is returned for an unsupported store kind.
var ErrUnknownStore = errors.New("backend: unknown store")

// Config selects and configures the counter store.
type Config struct {
	Store         string       `koanf:"store"`
	KeyPrefix     string       `koanf:"key_prefix"`
	PruneSchedule string       `koanf:"prune_schedule"`
	Redis         redis.Config `koanf:"redis"`
	DB            db.Config    `koanf:"db"`
}

// DefaultConfig uses the in-process store.
func DefaultConfig() Config {
	return Config{
		Store:         StoreMemory,
		KeyPrefix:     "rpcgate",
		PruneSchedule: "@every 5m",
		Redis:         redis.DefaultConfig(),
		DB:            db.DefaultConfig(),
	}
}

// Backend is an open counter store plus what the server must run around it.
// Decisions caches resource-access decisions next to the counters: in Redis
// when the store is Redis, in process otherwise.
type Backend struct {
	Store     ratelimit.Store
	Decisions cache.Cache[bool]
	Checks    health.Checks
	Startup   []func(context.Context) error
	Shutdown  []func(context.Context) error
}

// Open connects the configured store. Postgres stores get a startup hook that
// applies the counter migrations and a scheduled task that prunes expired rows.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	b := &Backend{Checks: make(health.Checks)}

	kind := strings.ToLower(strings.TrimSpace(cfg.Store))
	if kind == "" {
		kind = StoreMemory
	}

	switch kind {
	case StoreMemory:
		m := ratelimit.NewMemory()
		b.Store = m
		b.Shutdown = append(b.Shutdown, func(context.Context) error { return m.Close() })

	case StoreRedis:
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.Store = ratelimit.NewRedis(client, ratelimit.WithPrefix(cfg.KeyPrefix))
		b.Decisions = cache.NewRedis[bool](client, cfg.KeyPrefix, 0)
		b.Checks[StoreRedis] = redis.Healthcheck(client)
		b.Shutdown = append(b.Shutdown, redis.Shutdown(client))

	case StorePostgres:
		pool, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		store := ratelimit.NewPostgres(pool)
		b.Store = store
		b.Checks[StorePostgres] = db.Healthcheck(pool)

		sched := scheduler.New(scheduler.WithLogger(log))
		if err := sched.Add("prune_rate_limit_counters", cfg.PruneSchedule, func(ctx context.Context) error {
			n, err := store.Prune(ctx)
			if err != nil {
				return err
			}
			log.DebugContext(ctx, "pruned rate limit counters", slog.Int64("rows", n))
			return nil
		}); err != nil {
			pool.Close()
			return nil, err
		}

		b.Startup = append(b.Startup,
			func(ctx context.Context) error {
				return db.Migrate(ctx, pool, ratelimit.Migrations, "migrations", cfg.DB.MigrationsTable, log)
			},
			sched.StartFunc(),
		)
		b.Shutdown = append(b.Shutdown, sched.Shutdown, db.Shutdown(pool))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}

	if b.Decisions == nil {
		decisions := cache.NewMemory[bool]()
		b.Decisions = decisions
		b.Shutdown = append(b.Shutdown, func(context.Context) error { return decisions.Close() })
	}

	log.Info("rate limit store ready", slog.String("store", kind))
	return b, nil
}

// Close runs the shutdown hooks in order. Use it when the backend is opened
// but the server never takes ownership of the hooks.
func (b *Backend) Close(ctx context.Context) error {
	var errs []error
	for _, hook := range b.Shutdown {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
