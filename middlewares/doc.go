// Package middlewares provides the procedure pipeline stages and the net/http
// middleware used by rpcgate services.
//
// # Pipeline stages
//
// Stages wrap a procedure's terminal handler. The canonical order, outermost
// first, is:
//
//	Logging       one record and one span per call
//	ErrorHandler  panics and unknown errors become Internal AppErrors
//	RateLimit     fixed-window counter per policy key
//	Authenticated / RequireRole / RequireAccess
//	Validate      typed input placed on the Context
//
// Build procedures with them through internal.Builder or the rpcgate.Stack
// compositions:
//
//	b := rpcgate.NewBuilder(
//	    middlewares.Logging(log),
//	    middlewares.ErrorHandler(log),
//	    middlewares.RateLimit(store, middlewares.AuthRateLimit()),
//	    middlewares.Validate(registerSchema),
//	)
//	proc := b.Mutation("register", rpcgate.Handle(register))
//
// RateLimit fails closed: when the counter store is unreachable the call
// fails with a Database error. WithFailOpen lets such calls through.
//
// # HTTP middleware
//
// RequestID, CORS, AccessLog, HTTPRateLimit, Recover and
// CrossOriginResourcePolicy are plain func(http.Handler) http.Handler values
// for rpcgate.WithHTTPMiddleware and the gateway router. RequestIDExtractor
// adds the request ID to every log record written with a request context.
package middlewares
