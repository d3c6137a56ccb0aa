package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/health"
	"github.com/dmitrymomot/rpcgate/pkg/ratelimit"
	"github.com/dmitrymomot/rpcgate/pkg/telemetry"
)

// Gateway responses.
const (
	msgGatewayRunning  = "Gateway running successfully!"
	msgBadGateway      = "Upstream service is unavailable"
	msgPayloadTooLarge = "Request body too large"
)

// errInvalidUpstream is returned for an upstream URL without scheme or host.
var errInvalidUpstream = errors.New("gateway: invalid upstream url")

// newRouter builds the gateway handler: shared HTTP middleware, the gateway
// health endpoints, and a reverse proxy for everything else.
func newRouter(cfg Config, store ratelimit.Store, checks health.Checks, log *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(cfg.Upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidUpstream, cfg.Upstream)
	}

	r := chi.NewRouter()
	r.Use(
		telemetry.Middleware("gateway"),
		middlewares.Recover(log),
		middlewares.RequestID(),
		middlewares.AccessLog(log),
		middlewares.CrossOriginResourcePolicy("cross-origin"),
		middlewares.CORS(cfg.CORS),
		middlewares.HTTPRateLimit(store, middlewares.HTTPRateLimitConfig{
			Log:            log,
			Window:         cfg.RateLimit.Window,
			Limit:          cfg.RateLimit.Limit,
			TrustedProxies: cfg.RateLimit.TrustedProxies,
			FailOpen:       cfg.RateLimit.FailOpen,
		}),
	)

	r.Get("/gateway-health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": msgGatewayRunning})
	})
	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithLogger(log)))

	r.Handle("/*", limitBody(cfg.MaxBodySize, newProxy(target, log)))
	return r, nil
}

// limitBody rejects declared oversized bodies up front and caps the rest
// while they are streamed upstream.
func limitBody(n int64, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	capped := http.MaxBytesHandler(next, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > n {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(msgPayloadTooLarge))
			return
		}
		capped.ServeHTTP(w, r)
	})
}

func newProxy(target *url.URL, log *slog.Logger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Transport: telemetry.Transport(nil),
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		// CORS and request ID headers are owned by the gateway.
		ModifyResponse: func(resp *http.Response) error {
			for name := range resp.Header {
				if strings.HasPrefix(name, "Access-Control-") {
					resp.Header.Del(name)
				}
			}
			resp.Header.Del("X-Request-Id")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(msgPayloadTooLarge))
				return
			}
			log.ErrorContext(r.Context(), "proxy request failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusBadGateway, errorBody(msgBadGateway))
		},
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"status": "error", "message": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
