package middlewares

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/pkg/ratelimit"
)

// KeyFunc derives the counter key for a call.
type KeyFunc func(c internal.Context) string

// RateLimitPolicy is a fixed-window limit: at most Limit calls per Window for
// each key produced by Key.
type RateLimitPolicy struct {
	Key     KeyFunc
	Name    string
	Message string
	Window  time.Duration
	Limit   int64
}

// DefaultRateLimit allows 100 calls per minute per client IP and procedure.
func DefaultRateLimit() RateLimitPolicy {
	return RateLimitPolicy{
		Name:   "default",
		Limit:  100,
		Window: time.Minute,
		Key:    KeyByIPAndPath("rate_limit"),
	}
}

// AuthRateLimit allows 5 attempts per 15 minutes per client IP and email.
func AuthRateLimit() RateLimitPolicy {
	return RateLimitPolicy{
		Name:   "auth",
		Limit:  5,
		Window: 15 * time.Minute,
		Key:    KeyByIPAndEmail("auth"),
	}
}

// UploadRateLimit allows 10 uploads per hour per user.
func UploadRateLimit() RateLimitPolicy {
	return RateLimitPolicy{
		Name:   "upload",
		Limit:  10,
		Window: time.Hour,
		Key:    KeyByIdentity("upload"),
	}
}

// KeyByIPAndPath keys as "<prefix>:<ip>:<path>".
func KeyByIPAndPath(prefix string) KeyFunc {
	return func(c internal.Context) string {
		return prefix + ":" + c.IP() + ":" + c.Path()
	}
}

// KeyByIPAndEmail keys as "<prefix>:<ip>:<email>", reading email from the raw
// JSON input. The email is trimmed and lowercased; a missing one is empty.
func KeyByIPAndEmail(prefix string) KeyFunc {
	return func(c internal.Context) string {
		var in struct {
			Email string `json:"email"`
		}
		if len(c.RawInput()) > 0 {
			_ = json.Unmarshal(c.RawInput(), &in)
		}
		return prefix + ":" + c.IP() + ":" + strings.ToLower(strings.TrimSpace(in.Email))
	}
}

// KeyByIdentity keys as "<prefix>:<userID>", or "<prefix>:anonymous".
func KeyByIdentity(prefix string) KeyFunc {
	return func(c internal.Context) string {
		id := c.UserID()
		if id == "" {
			id = "anonymous"
		}
		return prefix + ":" + id
	}
}

// RateLimitOption configures the RateLimit stage.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	log      *slog.Logger
	failOpen bool
}

// WithFailOpen lets calls through when the counter store is unavailable.
// By default such calls fail with a Database error.
func WithFailOpen() RateLimitOption {
	return func(cfg *rateLimitConfig) {
		cfg.failOpen = true
	}
}

// WithRateLimitLogger sets the logger used to report store failures.
func WithRateLimitLogger(l *slog.Logger) RateLimitOption {
	return func(cfg *rateLimitConfig) {
		if l != nil {
			cfg.log = l
		}
	}
}

// RateLimit rejects the call with a RateLimit error once the policy's count
// for the call's key has been reached, and otherwise counts it and continues.
// Rejected calls are not counted.
func RateLimit(store ratelimit.Store, policy RateLimitPolicy, opts ...RateLimitOption) internal.Stage {
	cfg := &rateLimitConfig{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}
	if policy.Key == nil {
		policy.Key = KeyByIPAndPath("rate_limit")
	}
	if policy.Message == "" {
		policy.Message = MsgTooManyRequests
	}
	name := "rate_limit"
	if policy.Name != "" {
		name += ":" + policy.Name
	}

	return internal.NewStage(name, func(c internal.Context, next internal.HandlerFunc) (any, error) {
		key := policy.Key(c)
		d, err := ratelimit.Check(c.Context(), store, key, policy.Limit, policy.Window)
		if err != nil && !errors.Is(err, ratelimit.ErrStoreUnavailable) {
			cfg.log.ErrorContext(c.Context(), "invalid rate limit policy",
				slog.String("policy", policy.Name),
				slog.String("error", err.Error()),
			)
			return nil, internal.ErrInternal("", internal.WithError(err))
		}
		if err != nil {
			cfg.log.ErrorContext(c.Context(), "rate limit check failed",
				slog.String("policy", policy.Name),
				slog.String("key", key),
				slog.Bool("fail_open", cfg.failOpen),
				slog.String("error", err.Error()),
			)
			if cfg.failOpen {
				return next(c)
			}
			return nil, internal.ErrDatabase(MsgRateLimitDegraded, internal.WithError(err))
		}
		if !d.Allowed {
			return nil, internal.ErrRateLimit(policy.Message)
		}
		return next(c)
	})
}
