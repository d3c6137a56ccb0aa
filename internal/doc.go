// Package internal provides the core types and implementation for rpcgate.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/rpcgate" instead, which re-exports the public API.
//
// # Core Types
//
//   - Context: immutable per-call bundle of identity (User), client IP,
//     User-Agent, procedure path and input, over a context.Context
//   - Stage and HandlerFunc: one pipeline step and the continuation it calls
//   - Pipeline: runs stages in order around a terminal handler
//   - Builder, Procedure, Registry: compose stages into named procedures
//   - AppError and Kind: the closed error taxonomy rendered by the transport
//   - ContextBuilder: turns a transport Request into a Context
//   - App: serves a Registry over HTTP with chi
//
// # Pipeline Semantics
//
// The first stage is the outermost. A stage either returns without calling
// next (short-circuit) or calls next once with a possibly derived Context.
// Derived contexts never leak outward: Context is a value and every With*
// method returns a copy.
//
//	stack := internal.NewBuilder(logging, errorHandler, rateLimit)
//	proc := stack.Use(authenticated).Query("me", func(c internal.Context) (any, error) {
//	    u, _ := c.User()
//	    return u, nil
//	})
//
// Cancellation is checked before every step, so a caller that goes away never
// reaches the terminal handler.
//
// # Transport
//
// App mounts procedures under a base path (default "/trpc"):
//
//	GET  /trpc/{procedure}?input=<json>   queries
//	POST /trpc/{procedure}                mutations, JSON body up to 10 MiB
//
// Results are written as JSON with 200, or 204 when the handler returns nil.
// Errors are written as {"status":"error","message":...,"details":...} with the
// AppError status code; anything that is not an AppError becomes a generic 500.
//
// # Server Runtime
//
//	err := app.Run(":7001", internal.Logger(log), internal.ShutdownHook(redis.Shutdown(client)))
//
// Serve runs any http.Handler with the same lifecycle.
package internal
