package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/rpcgate/pkg/health"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Transport defaults.
const (
	DefaultBasePath    = "/trpc"
	DefaultMaxBodySize = 10 << 20 // 10 MiB

	// UnexpectedErrorMessage is rendered for errors that are not AppErrors.
	UnexpectedErrorMessage = "Something went wrong, please try again"
)

// App exposes a procedure registry over HTTP.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router       chi.Router
	registry     *Registry
	builder      *ContextBuilder
	verifier     TokenVerifier
	healthConfig *healthConfig
	logger       *slog.Logger
	basePath     string
	middlewares  []func(http.Handler) http.Handler
	routes       []route
	procedures   []*Procedure
	maxBodySize  int64
}

type route struct {
	handler http.HandlerFunc
	method  string
	pattern string
}

// New creates an application with the given options.
// Panics if the configured procedures cannot be registered.
//
// Example:
//
//	app := rpcgate.New(
//	    rpcgate.WithLogger(log),
//	    rpcgate.WithTokenVerifier(verifier),
//	    rpcgate.WithProcedures(procedures.Health(stack), procedures.Register(stack, log)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:      chi.NewRouter(),
		logger:      logger.NewNope(),
		basePath:    DefaultBasePath,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.registry == nil {
		a.registry = NewRegistry()
	}
	a.registry.MustRegister(a.procedures...)

	if a.builder == nil {
		a.builder = NewContextBuilder(a.verifier, WithBuilderLogger(a.logger))
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Registry returns the procedure registry served by the app.
func (a *App) Registry() *Registry {
	return a.registry
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":7001", rpcgate.Logger(log), rpcgate.ShutdownHook(redis.Shutdown(client)))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.address != "" {
		addr = cfg.address
	}
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// Invoke runs the named procedure for req, bypassing HTTP method checks.
// An unknown name yields a NotFound AppError.
func (a *App) Invoke(ctx context.Context, name string, req Request) (any, error) {
	proc, ok := a.registry.Lookup(name)
	if !ok {
		return nil, ErrNotFound("Procedure not found: " + name)
	}
	req.Path = name
	return proc.Call(a.builder.Build(ctx, req))
}

func (a *App) setupRoutes() {
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, ErrNotFound(""))
	})
	a.router.MethodNotAllowed(a.methodNotAllowed)

	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath,
			health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}

	for _, rt := range a.routes {
		a.router.Method(rt.method, rt.pattern, rt.handler)
	}

	a.router.Route(a.basePath, func(r chi.Router) {
		r.Get("/{procedure}", a.serveProcedure)
		r.Post("/{procedure}", a.serveProcedure)
	})
}

func (a *App) serveProcedure(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "procedure")
	proc, ok := a.registry.Lookup(name)
	if !ok {
		a.writeError(w, r, ErrNotFound("Procedure not found: "+name))
		return
	}

	want := http.MethodGet
	if proc.Type() == ProcedureMutation {
		want = http.MethodPost
	}
	if r.Method != want {
		w.Header().Set("Allow", want)
		a.methodNotAllowed(w, r)
		return
	}

	input, err := a.readInput(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	c := a.builder.Build(r.Context(), Request{
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
		Path:       name,
		Input:      input,
	})

	result, err := proc.Call(c)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readInput returns the raw JSON input: the "input" query parameter for
// queries, the request body for mutations. Empty input yields nil.
func (a *App) readInput(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	var raw []byte
	if r.Method == http.MethodGet {
		raw = []byte(r.URL.Query().Get("input"))
	} else {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBodySize))
		if err != nil {
			if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
				return nil, ErrValidation("Request body too large")
			}
			return nil, ErrValidation("Invalid input data", WithError(err))
		}
		raw = body
	}

	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, ErrValidation("Invalid input data")
	}
	return json.RawMessage(raw), nil
}

func (a *App) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Status:  "error",
		Message: "Method not allowed",
	})
}

// ErrorResponse is the JSON body rendered for failed calls.
type ErrorResponse struct {
	Details any    `json:"details,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeError renders err. AppErrors keep their status and message; anything
// else becomes a generic 500 and is logged.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := AsAppError(err)
	if ae == nil {
		a.logger.ErrorContext(r.Context(), "unhandled procedure error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: UnexpectedErrorMessage,
		})
		return
	}

	writeJSON(w, ae.StatusCode(), ErrorResponse{
		Status:  "error",
		Message: ae.Message,
		Details: ae.Details,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	rpcgate.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
