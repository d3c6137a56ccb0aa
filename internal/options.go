package internal

import (
	"log/slog"
	"net/http"
	"strings"
)

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger.
// Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithProcedures registers procedures served by the app.
// New panics if any procedure is invalid or duplicated.
func WithProcedures(procs ...*Procedure) Option {
	return func(a *App) {
		a.procedures = append(a.procedures, procs...)
	}
}

// WithRegistry serves an existing registry.
// Procedures passed with WithProcedures are added to it.
func WithRegistry(r *Registry) Option {
	return func(a *App) {
		if r != nil {
			a.registry = r
		}
	}
}

// WithTokenVerifier sets the verifier used by the default context builder.
// Without a verifier every call is anonymous.
func WithTokenVerifier(v TokenVerifier) Option {
	return func(a *App) {
		a.verifier = v
	}
}

// WithContextBuilder replaces the default context builder.
// WithTokenVerifier is ignored when a builder is set.
func WithContextBuilder(b *ContextBuilder) Option {
	return func(a *App) {
		if b != nil {
			a.builder = b
		}
	}
}

// WithBasePath sets the mount path for procedures.
// Defaults to "/trpc".
func WithBasePath(path string) Option {
	return func(a *App) {
		path = strings.TrimRight(strings.TrimSpace(path), "/")
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		a.basePath = path
	}
}

// WithMaxBodySize limits mutation request bodies.
// Defaults to 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.maxBodySize = n
		}
	}
}

// WithHTTPMiddleware adds net/http middleware applied to every route.
// Middleware is applied in the order provided; the first one is outermost.
//
// Example:
//
//	rpcgate.WithHTTPMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.CORS(middlewares.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}}),
//	)
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithRoute mounts a plain HTTP handler next to the procedures.
//
// Example:
//
//	rpcgate.WithRoute(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
//	    _, _ = w.Write([]byte(`{"message":"Hello API"}`))
//	})
func WithRoute(method, pattern string, h http.HandlerFunc) Option {
	return func(a *App) {
		if pattern != "" && h != nil {
			a.routes = append(a.routes, route{method: strings.ToUpper(method), pattern: pattern, handler: h})
		}
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	rpcgate.WithHealthChecks(
//	    rpcgate.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    rpcgate.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}
