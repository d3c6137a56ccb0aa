package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	URL           string        `koanf:"url"`
	PoolSize      int           `koanf:"pool_size"`
	MinIdleConns  int           `koanf:"min_idle_conns"`
	MaxIdleTime   time.Duration `koanf:"max_idle_time"`
	MaxActiveTime time.Duration `koanf:"max_active_time"`
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryInterval time.Duration `koanf:"retry_interval"`
	ReadTimeout   time.Duration `koanf:"read_timeout"`
	WriteTimeout  time.Duration `koanf:"write_timeout"`
	DialTimeout   time.Duration `koanf:"dial_timeout"`
}

// DefaultConfig returns settings for a local Redis instance.
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379/0",
		PoolSize:      10,
		MinIdleConns:  2,
		MaxIdleTime:   10 * time.Minute,
		MaxActiveTime: 30 * time.Minute,
		RetryAttempts: 3,
		RetryInterval: 2 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		DialTimeout:   5 * time.Second,
	}
}

// Options converts cfg into go-redis client options.
// Zero durations and sizes fall back to DefaultConfig.
func (cfg Config) Options() (*redis.Options, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	def := DefaultConfig()
	opts.PoolSize = orDefault(cfg.PoolSize, def.PoolSize)
	opts.MinIdleConns = orDefault(cfg.MinIdleConns, def.MinIdleConns)
	opts.ConnMaxIdleTime = orDefault(cfg.MaxIdleTime, def.MaxIdleTime)
	opts.ConnMaxLifetime = orDefault(cfg.MaxActiveTime, def.MaxActiveTime)
	opts.ReadTimeout = orDefault(cfg.ReadTimeout, def.ReadTimeout)
	opts.WriteTimeout = orDefault(cfg.WriteTimeout, def.WriteTimeout)
	opts.DialTimeout = orDefault(cfg.DialTimeout, def.DialTimeout)
	return opts, nil
}

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if err := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
