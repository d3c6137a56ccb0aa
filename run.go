package rpcgate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/rpcgate/internal"
)

// Serve runs any http.Handler with the same lifecycle as App.Run.
// It handles SIGINT and SIGTERM for graceful shutdown.
//
// Example:
//
//	err := rpcgate.Serve(router,
//	    rpcgate.Address(":9001"),
//	    rpcgate.Logger(log),
//	)
func Serve(handler http.Handler, opts ...RunOption) error {
	return internal.Serve(handler, opts...)
}

// Run options

// Address sets the server listen address.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the logger for server lifecycle events.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the maximum time to wait for graceful shutdown.
// Default is 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the server accepts
// connections. Hooks run in order; the first error aborts startup.
//
// Example:
//
//	rpcgate.StartupHook(func(ctx context.Context) error {
//	    return db.Migrate(ctx, pool, ratelimit.Migrations, "migrations", "", log)
//	})
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function called during graceful shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	rpcgate.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a base context for signal handling.
// Cancelling it triggers graceful shutdown.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
