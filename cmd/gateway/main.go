// Command gateway fronts the auth service: CORS, per-IP rate limiting and
// request IDs, then a reverse proxy.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dmitrymomot/rpcgate"
	"github.com/dmitrymomot/rpcgate/cmd/internal/backend"
	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/config"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
	"github.com/dmitrymomot/rpcgate/pkg/telemetry"
)

func main() {
	cfg := defaultConfig()
	if err := config.Load("GATEWAY_", &cfg,
		config.WithEnvFiles(".env"),
		config.WithFile(os.Getenv("GATEWAY_CONFIG_FILE")),
	); err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, log)
	if err != nil {
		return err
	}

	store, err := backend.Open(ctx, cfg.RateLimit.Config, log)
	if err != nil {
		return errors.Join(err, shutdownTracer(ctx))
	}

	router, err := newRouter(cfg, store.Store, store.Checks, log)
	if err != nil {
		return errors.Join(err, store.Close(ctx), shutdownTracer(ctx))
	}

	opts := []rpcgate.RunOption{
		rpcgate.Address(cfg.Address),
		rpcgate.Logger(log),
		rpcgate.ShutdownTimeout(cfg.ShutdownTimeout),
	}
	for _, hook := range store.Startup {
		opts = append(opts, rpcgate.StartupHook(hook))
	}
	for _, hook := range store.Shutdown {
		opts = append(opts, rpcgate.ShutdownHook(hook))
	}
	opts = append(opts, rpcgate.ShutdownHook(shutdownTracer))

	log.Info("proxying", slog.String("upstream", cfg.Upstream))
	return rpcgate.Serve(router, opts...)
}
