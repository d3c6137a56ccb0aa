package main

import (
	"time"

	"github.com/dmitrymomot/rpcgate/cmd/internal/backend"
	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
	"github.com/dmitrymomot/rpcgate/pkg/telemetry"
)

// Config is the gateway configuration. Environment variables use the
// GATEWAY_ prefix and "__" for nesting, e.g. GATEWAY_RATE_LIMIT__LIMIT=50.
type Config struct {
	Address         string                 `koanf:"address"`
	Upstream        string                 `koanf:"upstream"`
	Log             logger.Config          `koanf:"log"`
	CORS            middlewares.CORSConfig `koanf:"cors"`
	RateLimit       RateLimitConfig        `koanf:"rate_limit"`
	Telemetry       telemetry.Config       `koanf:"telemetry"`
	MaxBodySize     int64                  `koanf:"max_body_size"`
	ShutdownTimeout time.Duration          `koanf:"shutdown_timeout"`
}

// RateLimitConfig is the per-IP limit applied before proxying.
type RateLimitConfig struct {
	backend.Config `koanf:",squash"`
	Window         time.Duration `koanf:"window"`
	Limit          int64         `koanf:"limit"`
	// TrustedProxies counts the load balancers in front of the gateway.
	// Zero keys the limit on the connection address.
	TrustedProxies int  `koanf:"trusted_proxies"`
	FailOpen       bool `koanf:"fail_open"`
}

func defaultConfig() Config {
	rl := middlewares.DefaultHTTPRateLimitConfig()
	return Config{
		Address:  ":9001",
		Upstream: "http://localhost:7001",
		Log:      logger.Config{Level: "info", Format: logger.FormatJSON, Component: "gateway"},
		CORS:     middlewares.DefaultCORSConfig(),
		RateLimit: RateLimitConfig{
			Config: backend.DefaultConfig(),
			Window: rl.Window,
			Limit:  rl.Limit,
		},
		Telemetry:       telemetry.Config{ServiceName: "gateway"},
		MaxBodySize:     10 << 20,
		ShutdownTimeout: 30 * time.Second,
	}
}
