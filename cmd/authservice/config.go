package main

import (
	"time"

	"github.com/dmitrymomot/rpcgate/cmd/internal/backend"
	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
	"github.com/dmitrymomot/rpcgate/pkg/telemetry"
)

// Config is the auth service configuration. Environment variables use the
// AUTH_ prefix and "__" for nesting, e.g. AUTH_RATE_LIMIT__STORE=redis.
type Config struct {
	Address         string                 `koanf:"address"`
	BasePath        string                 `koanf:"base_path"`
	GrantsFile      string                 `koanf:"grants_file"`
	JWT             JWTConfig              `koanf:"jwt"`
	Log             logger.Config          `koanf:"log"`
	CORS            middlewares.CORSConfig `koanf:"cors"`
	RateLimit       backend.Config         `koanf:"rate_limit"`
	Telemetry       telemetry.Config       `koanf:"telemetry"`
	CallTimeout     time.Duration          `koanf:"call_timeout"`
	AccessCacheTTL  time.Duration          `koanf:"access_cache_ttl"`
	ShutdownTimeout time.Duration          `koanf:"shutdown_timeout"`
	FailOpen        bool                   `koanf:"fail_open"`
}

// JWTConfig enables JWT verification. With an empty secret every bearer
// token resolves to the development mock user.
type JWTConfig struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

func defaultConfig() Config {
	return Config{
		Address:         ":7001",
		BasePath:        "/trpc",
		JWT:             JWTConfig{Issuer: "rpcgate", TTL: time.Hour},
		Log:             logger.Config{Level: "info", Format: logger.FormatJSON, Component: "authservice"},
		CORS:            middlewares.DefaultCORSConfig(),
		RateLimit:       backend.DefaultConfig(),
		Telemetry:       telemetry.Config{ServiceName: "authservice"},
		CallTimeout:     30 * time.Second,
		AccessCacheTTL:  30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}
