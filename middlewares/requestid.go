package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rpcgate/pkg/logger"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are checked in order for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDOption configures the RequestID middleware.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	generator      func() string
	responseHeader string
	headers        []string
}

// WithRequestIDHeaders sets the headers checked for an existing ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

// WithRequestIDGenerator replaces the UUID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

// RequestID reuses an incoming request ID or generates a UUID, stores it in
// the request context and echoes it in the X-Request-ID response header.
// The gateway forwards the header so both services log the same ID.
func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	cfg := &requestIDConfig{
		generator:      uuid.NewString,
		responseHeader: "X-Request-ID",
		headers:        DefaultRequestIDHeaders,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			for _, h := range cfg.headers {
				if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
					id = v
					break
				}
			}
			if id == "" {
				id = cfg.generator()
				r.Header.Set(cfg.responseHeader, id)
			}

			w.Header().Set(cfg.responseHeader, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the request ID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor adds "request_id" to every log record written with a
// request context.
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
func RequestIDExtractor() logger.ContextExtractor {
	return logger.FromContextValue(requestIDKey{}, "request_id")
}
