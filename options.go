package rpcgate

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/pkg/health"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
)

// App options

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithProcedures registers procedures served by the app.
func WithProcedures(procs ...*Procedure) Option {
	return internal.WithProcedures(procs...)
}

// WithRegistry serves an existing registry.
func WithRegistry(r *Registry) Option {
	return internal.WithRegistry(r)
}

// WithTokenVerifier sets the verifier used to resolve bearer tokens.
func WithTokenVerifier(v TokenVerifier) Option {
	return internal.WithTokenVerifier(v)
}

// WithContextBuilder replaces the default context builder.
func WithContextBuilder(b *ContextBuilder) Option {
	return internal.WithContextBuilder(b)
}

// WithBasePath sets the mount path for procedures. Defaults to "/trpc".
func WithBasePath(path string) Option {
	return internal.WithBasePath(path)
}

// WithMaxBodySize limits mutation request bodies. Defaults to 10 MiB.
func WithMaxBodySize(n int64) Option {
	return internal.WithMaxBodySize(n)
}

// WithHTTPMiddleware adds net/http middleware applied to every route.
// The first one is outermost.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithRoute mounts a plain HTTP handler next to the procedures.
func WithRoute(method, pattern string, h http.HandlerFunc) Option {
	return internal.WithRoute(method, pattern, h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	rpcgate.WithHealthChecks(
//	    rpcgate.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Context builder options

// WithBuilderLogger sets the logger used to report failed token verification.
func WithBuilderLogger(l *slog.Logger) BuilderOption {
	return internal.WithBuilderLogger(l)
}

// WithIPHeader sets the forwarded-for header consulted for the client IP.
func WithIPHeader(name string) BuilderOption {
	return internal.WithIPHeader(name)
}

// WithTokenFromHeader reads the token from a plain header instead of
// "Authorization: Bearer".
func WithTokenFromHeader(name string) BuilderOption {
	return internal.WithTokenExtractor(internal.FromHeader(name))
}

// WithTokenFromCookie reads the token from a cookie, falling back to the
// bearer token.
func WithTokenFromCookie(name string) BuilderOption {
	return internal.WithTokenExtractor(internal.FromCookie(name), internal.FromBearerToken())
}

// NewLogger creates a JSON logger with a component name and optional
// extractors.
//
// Example:
//
//	log := rpcgate.NewLogger("authservice", middlewares.RequestIDExtractor())
func NewLogger(component string, extractors ...ContextExtractor) *slog.Logger {
	return logger.New(logger.Config{Component: component}, extractors...)
}
