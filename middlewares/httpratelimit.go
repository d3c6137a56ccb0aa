package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/pkg/ratelimit"
)

// MsgTooManyRequestsFromIP is the gateway's rate limit message.
const MsgTooManyRequestsFromIP = "Too many requests from this IP, please try again later."

// HTTPRateLimitConfig configures HTTPRateLimit.
type HTTPRateLimitConfig struct {
	// Key derives the counter key. Default: "gateway:<client ip>", see
	// TrustedClientIP.
	Key     func(r *http.Request) string `koanf:"-"`
	Log     *slog.Logger                 `koanf:"-"`
	Message string                       `koanf:"message"`
	Window  time.Duration                `koanf:"window"`
	Limit   int64                        `koanf:"limit"`
	// TrustedProxies is the number of proxies in front of the service whose
	// X-Forwarded-For entries are honored. Zero keys on the connection address.
	TrustedProxies int  `koanf:"trusted_proxies"`
	FailOpen       bool `koanf:"fail_open"`
}

// DefaultHTTPRateLimitConfig allows 100 requests per 15 minutes per client IP.
func DefaultHTTPRateLimitConfig() HTTPRateLimitConfig {
	return HTTPRateLimitConfig{
		Limit:   100,
		Window:  15 * time.Minute,
		Message: MsgTooManyRequestsFromIP,
	}
}

// HTTPRateLimit applies a fixed-window limit before the request reaches
// next. Rejections are JSON 429 responses; RateLimit-Limit and
// RateLimit-Remaining headers are set on every counted request.
func HTTPRateLimit(store ratelimit.Store, cfg HTTPRateLimitConfig) func(http.Handler) http.Handler {
	def := DefaultHTTPRateLimitConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Message == "" {
		cfg.Message = def.Message
	}
	if cfg.Key == nil {
		cfg.Key = func(r *http.Request) string {
			return "gateway:" + TrustedClientIP(r, cfg.TrustedProxies)
		}
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	limit := strconv.FormatInt(cfg.Limit, 10)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := ratelimit.Check(r.Context(), store, cfg.Key(r), cfg.Limit, cfg.Window)
			if err != nil && !errors.Is(err, ratelimit.ErrStoreUnavailable) {
				cfg.Log.ErrorContext(r.Context(), "invalid gateway rate limit",
					slog.String("error", err.Error()),
				)
				writeJSONError(w, http.StatusInternalServerError, MsgUnexpectedError)
				return
			}
			if err != nil {
				cfg.Log.ErrorContext(r.Context(), "gateway rate limit check failed",
					slog.Bool("fail_open", cfg.FailOpen),
					slog.String("error", err.Error()),
				)
				if cfg.FailOpen {
					next.ServeHTTP(w, r)
					return
				}
				writeJSONError(w, http.StatusServiceUnavailable, MsgRateLimitDegraded)
				return
			}

			w.Header().Set("RateLimit-Limit", limit)
			w.Header().Set("RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				writeJSONError(w, http.StatusTooManyRequests, cfg.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TrustedClientIP returns the caller address as seen by the outermost of
// hops trusted proxies. The connection address counts as the last hop, so
// with hops == 0 X-Forwarded-For is ignored and with hops == 1 the rightmost
// forwarded entry is used. Entries to the left of the trusted ones are
// client-supplied and never consulted.
func TrustedClientIP(r *http.Request, hops int) string {
	remote := internal.ClientIP(nil, r.RemoteAddr)
	if hops <= 0 {
		return remote
	}

	var chain []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for part := range strings.SplitSeq(v, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				chain = append(chain, ip)
			}
		}
	}
	chain = append(chain, remote)

	i := len(chain) - 1 - hops
	if i < 0 {
		i = 0
	}
	return chain[i]
}
