package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig converts cfg into a pgxpool configuration.
func (cfg Config) PoolConfig() (*pgxpool.Config, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	pc, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}

	def := DefaultConfig()
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	} else {
		pc.MaxConns = def.MaxConns
	}
	pc.MinConns = min(max(cfg.MinConns, 0), pc.MaxConns)
	pc.HealthCheckPeriod = durationOr(cfg.HealthCheckPeriod, def.HealthCheckPeriod)
	pc.MaxConnIdleTime = durationOr(cfg.MaxConnIdleTime, def.MaxConnIdleTime)
	pc.MaxConnLifetime = durationOr(cfg.MaxConnLifetime, def.MaxConnLifetime)
	return pc, nil
}

// Connect opens a pool and pings it, retrying with a linear backoff.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

// Healthcheck returns a readiness check that pings pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrHealthcheckFailed
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes pool.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		if pool != nil {
			pool.Close()
		}
		return nil
	}
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
