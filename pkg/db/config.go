package db

import "time"

// Config holds PostgreSQL connection settings.
// Field tags match the koanf layout loaded by pkg/config.
type Config struct {
	URL               string        `koanf:"url"`
	MigrationsTable   string        `koanf:"migrations_table"`
	HealthCheckPeriod time.Duration `koanf:"health_check_period"`
	MaxConnIdleTime   time.Duration `koanf:"max_conn_idle_time"`
	MaxConnLifetime   time.Duration `koanf:"max_conn_lifetime"`
	RetryAttempts     int           `koanf:"retry_attempts"`
	RetryInterval     time.Duration `koanf:"retry_interval"`
	MaxConns          int32         `koanf:"max_conns"`
	MinConns          int32         `koanf:"min_conns"`
}

// DefaultConfig returns pool settings suited to a single service instance.
// URL is left empty.
func DefaultConfig() Config {
	return Config{
		MigrationsTable:   "schema_migrations",
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		MaxConnLifetime:   30 * time.Minute,
		RetryAttempts:     3,
		RetryInterval:     2 * time.Second,
		MaxConns:          10,
		MinConns:          2,
	}
}
