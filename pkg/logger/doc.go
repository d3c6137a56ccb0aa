// Package logger builds the slog loggers used by rpcgate services.
//
// Loggers write JSON (or text) to stdout, inject request-scoped attributes
// through [ContextExtractor] functions, and optionally forward warnings and
// errors to Sentry when a DSN is configured:
//
//	log := logger.New(logger.Config{
//		Level:     "info",
//		Component: "authservice",
//		Sentry:    logger.SentryConfig{DSN: os.Getenv("SENTRY_DSN")},
//	}, middlewares.RequestIDExtractor())
//
//	log.InfoContext(ctx, "procedure call", slog.String("path", "health"))
//	// {"level":"INFO","msg":"procedure call","component":"authservice","path":"health","request_id":"..."}
//
// Sentry initialization failures are logged and the logger falls back to
// stdout only. [NewNope] returns a logger that discards everything and is the
// default wherever a logger is optional.
package logger
