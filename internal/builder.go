package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// UnknownIP is reported when no client address can be determined.
const UnknownIP = "unknown"

// Request is the transport-neutral view of an incoming call.
type Request struct {
	Header     http.Header
	RemoteAddr string
	Path       string
	Input      json.RawMessage
}

// TokenVerifier resolves a bearer token to a user.
// A nil user with a nil error means the token is not recognized.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// TokenVerifierFunc adapts a function to the TokenVerifier interface.
type TokenVerifierFunc func(ctx context.Context, token string) (*User, error)

// Verify calls f(ctx, token).
func (f TokenVerifierFunc) Verify(ctx context.Context, token string) (*User, error) {
	return f(ctx, token)
}

// ContextBuilder turns incoming requests into pipeline Contexts.
type ContextBuilder struct {
	verifier  TokenVerifier
	logger    *slog.Logger
	extractor Extractor
	ipHeader  string
}

// BuilderOption configures a ContextBuilder.
type BuilderOption func(*ContextBuilder)

// WithBuilderLogger sets the logger used to report failed token verification.
func WithBuilderLogger(l *slog.Logger) BuilderOption {
	return func(b *ContextBuilder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithTokenExtractor replaces the token sources.
// Default: bearer token from the Authorization header.
func WithTokenExtractor(sources ...ExtractorSource) BuilderOption {
	return func(b *ContextBuilder) {
		b.extractor = NewExtractor(sources...)
	}
}

// WithIPHeader sets the forwarded-for header consulted for the client IP.
// An empty name disables header lookup. Default: X-Forwarded-For.
func WithIPHeader(name string) BuilderOption {
	return func(b *ContextBuilder) {
		b.ipHeader = name
	}
}

// NewContextBuilder creates a builder. A nil verifier makes every call anonymous.
func NewContextBuilder(verifier TokenVerifier, opts ...BuilderOption) *ContextBuilder {
	b := &ContextBuilder{
		verifier:  verifier,
		logger:    slog.New(slog.DiscardHandler),
		extractor: NewExtractor(FromBearerToken()),
		ipHeader:  "X-Forwarded-For",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates the Context for a call. It never fails: any problem resolving
// the identity yields an anonymous Context.
func (b *ContextBuilder) Build(ctx context.Context, req Request) Context {
	if ctx == nil {
		ctx = context.Background()
	}

	ip := clientIP(req.Header, req.RemoteAddr, b.ipHeader)
	c := NewContext(ctx, req.Path, ip, req.Header.Get("User-Agent"), b.resolveUser(ctx, req))
	return c.WithRawInput(req.Input)
}

func (b *ContextBuilder) resolveUser(ctx context.Context, req Request) (user *User) {
	if b.verifier == nil {
		return nil
	}
	token, ok := b.extractor.Extract(req)
	if !ok {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "token verifier panicked",
				slog.String("path", req.Path),
				slog.String("panic", fmt.Sprint(r)),
			)
			user = nil
		}
	}()

	u, err := b.verifier.Verify(ctx, token)
	if err != nil {
		b.logger.WarnContext(ctx, "token verification failed",
			slog.String("path", req.Path),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return u
}

// ClientIP returns the caller address: the first element of X-Forwarded-For,
// else the host part of remoteAddr, else "unknown".
func ClientIP(header http.Header, remoteAddr string) string {
	return clientIP(header, remoteAddr, "X-Forwarded-For")
}

func clientIP(header http.Header, remoteAddr, forwardedHeader string) string {
	if forwardedHeader != "" {
		if xff := header.Get(forwardedHeader); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	remoteAddr = strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil && host != "" {
		return host
	}
	if remoteAddr != "" {
		return remoteAddr
	}
	return UnknownIP
}
