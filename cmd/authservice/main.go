// Command authservice serves the rpcgate procedures.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrymomot/rpcgate"
	"github.com/dmitrymomot/rpcgate/cmd/internal/backend"
	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/config"
	"github.com/dmitrymomot/rpcgate/pkg/jwt"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
	"github.com/dmitrymomot/rpcgate/pkg/telemetry"
	"github.com/dmitrymomot/rpcgate/procedures"
)

func main() {
	cfg := defaultConfig()
	if err := config.Load("AUTH_", &cfg,
		config.WithEnvFiles(".env"),
		config.WithFile(os.Getenv("AUTH_CONFIG_FILE")),
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
	verifier, err := newVerifier(cfg.JWT, log)
	if err != nil {
		return err
	}

	authority, err := newAuthority(cfg.GrantsFile)
	if err != nil {
		return err
	}

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, log)
	if err != nil {
		return err
	}

	store, err := backend.Open(ctx, cfg.RateLimit, log)
	if err != nil {
		return errors.Join(err, shutdownTracer(ctx))
	}
	if cfg.GrantsFile != "" && cfg.AccessCacheTTL > 0 {
		authority = rpcgate.CachedAuthority(authority, store.Decisions, cfg.AccessCacheTTL)
	}

	stackOpts := []rpcgate.StackOption{
		rpcgate.WithStackLogger(log),
		rpcgate.WithAuthority(authority),
		rpcgate.WithCallTimeout(cfg.CallTimeout),
	}
	if cfg.FailOpen {
		stackOpts = append(stackOpts, rpcgate.WithRateLimitFailOpen())
	}
	stack := rpcgate.NewStack(store.Store, stackOpts...)

	healthOpts := make([]rpcgate.HealthOption, 0, len(store.Checks))
	for name, check := range store.Checks {
		healthOpts = append(healthOpts, rpcgate.WithReadinessCheck(name, check))
	}

	app := rpcgate.New(
		rpcgate.WithLogger(log),
		rpcgate.WithBasePath(cfg.BasePath),
		rpcgate.WithTokenVerifier(verifier),
		rpcgate.WithHTTPMiddleware(
			telemetry.Middleware("authservice"),
			middlewares.RequestID(),
			middlewares.CORS(cfg.CORS),
		),
		rpcgate.WithRoute(http.MethodGet, "/", hello),
		rpcgate.WithHealthChecks(healthOpts...),
		rpcgate.WithProcedures(
			procedures.Health(stack),
			procedures.Register(stack, log),
		),
	)

	runOpts := []rpcgate.RunOption{
		rpcgate.Logger(log),
		rpcgate.ShutdownTimeout(cfg.ShutdownTimeout),
	}
	for _, hook := range store.Startup {
		runOpts = append(runOpts, rpcgate.StartupHook(hook))
	}
	for _, hook := range store.Shutdown {
		runOpts = append(runOpts, rpcgate.ShutdownHook(hook))
	}
	runOpts = append(runOpts, rpcgate.ShutdownHook(shutdownTracer))

	return app.Run(cfg.Address, runOpts...)
}

func newVerifier(cfg JWTConfig, log *slog.Logger) (rpcgate.TokenVerifier, error) {
	if cfg.Secret == "" {
		log.Warn("no JWT secret configured, every bearer token resolves to the mock user")
		return rpcgate.NewStaticVerifier(rpcgate.MockUser()), nil
	}
	svc, err := jwt.New(cfg.Secret, jwt.WithIssuer(cfg.Issuer), jwt.WithTTL(cfg.TTL))
	if err != nil {
		return nil, err
	}
	return rpcgate.NewJWTVerifier(svc), nil
}

func newAuthority(grantsFile string) (rpcgate.ResourceAuthority, error) {
	if grantsFile == "" {
		return rpcgate.AllowAll(), nil
	}
	grants, err := rpcgate.LoadStaticGrantsFile(grantsFile)
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"Hello API"}` + "\n"))
}
