// Package rpcgate provides a small framework for serving typed remote
// procedures over HTTP behind a fixed, ordered middleware pipeline.
//
// A procedure is a named query or mutation. Every call runs the same stage
// sequence, decided once at registration: logging, error normalization, rate
// limiting, then whatever authentication, role, resource-access and input
// validation stages the procedure was composed with.
//
// # Quick Start
//
//	log := rpcgate.NewLogger("authservice", middlewares.RequestIDExtractor())
//	stack := rpcgate.NewStack(ratelimit.NewMemory(), rpcgate.WithStackLogger(log))
//
//	app := rpcgate.New(
//	    rpcgate.WithLogger(log),
//	    rpcgate.WithTokenVerifier(rpcgate.NewStaticVerifier(rpcgate.MockUser())),
//	    rpcgate.WithProcedures(
//	        procedures.Health(stack),
//	        procedures.Register(stack, log),
//	    ),
//	)
//
//	if err := app.Run(":7001", rpcgate.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Compositions
//
// [Stack] hands out the canonical builders:
//
//   - Public: logging, error handling, rate limit
//   - Protected: Public plus authentication
//   - RoleGated, Admin, SuperAdmin: Public plus a role check; SUPER_ADMIN
//     passes every role check
//   - ResourceGated, DataSource, Dashboard: Public plus a resource-access
//     check against the configured [ResourceAuthority]
//
// Any of them can be combined with input validation:
//
//	schema := middlewares.JSONSchema(func(in UpdateInput) []validator.Rule {
//	    return []validator.Rule{validator.RequiredString("name", in.Name)}
//	})
//	update := rpcgate.Validated(stack.Protected(), schema).
//	    Mutation("update", rpcgate.Handle(func(c rpcgate.Context, in UpdateInput) (any, error) {
//	        return in, nil
//	    }))
//
// # Identity
//
// The context builder reads "Authorization: Bearer <token>" and asks the
// configured [TokenVerifier] for the user. A missing or rejected token makes
// the call anonymous; it never fails the request by itself.
//
// # Errors
//
// Handlers return [AppError] values built with ErrNotFound, ErrValidation,
// ErrAuthentication, ErrForbidden, ErrDatabase, ErrRateLimit and ErrInternal.
// The transport renders them as {"status":"error","message":...,"details":...}
// with the status code of their kind. Anything else is logged and replaced
// with a generic Internal error.
//
// # Health Checks
//
//	rpcgate.WithHealthChecks(
//	    rpcgate.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	    rpcgate.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
//
// # Graceful Shutdown
//
// App.Run and Serve handle SIGINT and SIGTERM. Startup hooks run before the
// listener accepts traffic; shutdown hooks run in registration order with
// the shutdown timeout.
package rpcgate
