package ratelimit

import (
	"context"
	"embed"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the goose migrations for the Postgres store.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// DB is the subset of pgx used by the Postgres store.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getCounterSQL = `SELECT count FROM rate_limit_counters WHERE key = $1 AND expires_at > now()`

	incrementCounterSQL = `
INSERT INTO rate_limit_counters (key, count, expires_at)
VALUES ($1, 1, now() + make_interval(secs => $2))
ON CONFLICT (key) DO UPDATE SET
	count = CASE WHEN rate_limit_counters.expires_at <= now()
		THEN 1 ELSE rate_limit_counters.count + 1 END,
	expires_at = CASE WHEN rate_limit_counters.expires_at <= now()
		THEN EXCLUDED.expires_at ELSE rate_limit_counters.expires_at END`

	pruneCountersSQL = `DELETE FROM rate_limit_counters WHERE expires_at <= now()`
)

// Postgres is a Store backed by the rate_limit_counters table.
type Postgres struct {
	db DB
}

// NewPostgres creates a Postgres-backed store.
// The table is created by applying Migrations.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, key string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, ErrEmptyKey
	}
	var n int64
	err := p.db.QueryRow(ctx, getCounterSQL, key).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// Increment implements Store. The upsert takes a row lock, so concurrent
// increments of the same key serialize.
func (p *Postgres) Increment(ctx context.Context, key string, window time.Duration) error {
	if err := validate(key, window); err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, incrementCounterSQL, key, window.Seconds()); err != nil {
		return unavailable(err)
	}
	return nil
}

// Prune deletes expired counters and returns how many were removed.
func (p *Postgres) Prune(ctx context.Context) (int64, error) {
	tag, err := p.db.Exec(ctx, pruneCountersSQL)
	if err != nil {
		return 0, unavailable(err)
	}
	return tag.RowsAffected(), nil
}
