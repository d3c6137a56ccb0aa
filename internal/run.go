package internal

import (
	"errors"
	"net/http"
)

// ErrNoHandler is returned by Serve when no handler is given.
var ErrNoHandler = errors.New("serve: no handler configured")

// Serve runs any http.Handler with the same lifecycle as App.Run: signal-aware
// graceful shutdown plus startup and shutdown hooks.
// Use it for services that are not procedure apps, such as the gateway.
//
// Example:
//
//	err := rpcgate.Serve(gatewayRouter,
//	    rpcgate.Address(":9001"),
//	    rpcgate.Logger(log),
//	    rpcgate.ShutdownHook(redis.Shutdown(client)),
//	)
func Serve(handler http.Handler, opts ...RunOption) error {
	if handler == nil {
		return ErrNoHandler
	}
	cfg := buildRunConfig(opts...)

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
