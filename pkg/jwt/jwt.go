package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the claim set accepted by Service.
type Claims = jwt.Claims

// RegisteredClaims is re-exported so callers can embed it without importing jwt/v5.
type RegisteredClaims = jwt.RegisteredClaims

// Service signs and verifies tokens with a shared HMAC secret.
type Service struct {
	now      func() time.Time
	issuer   string
	audience []string
	secret   []byte
	ttl      time.Duration
	leeway   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim written and required by the service.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithAudience sets the aud claim written and required by the service.
func WithAudience(aud ...string) Option {
	return func(s *Service) {
		s.audience = aud
	}
}

// WithTTL sets the lifetime of generated tokens. Default: 15 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLeeway tolerates clock skew when validating time-based claims.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) {
		s.leeway = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service. Returns ErrEmptySecret if secret is empty.
func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	s := &Service{
		secret: []byte(secret),
		ttl:    15 * time.Minute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisteredClaims returns standard claims for subject, stamped with the
// service issuer, audience and lifetime.
func (s *Service) RegisteredClaims(subject string) RegisteredClaims {
	now := s.now()
	return RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  s.audience,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
}

// Generate signs claims with HS256.
func (s *Service) Generate(claims Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Join(ErrGenerationFailed, err)
	}
	return token, nil
}

// Parse verifies token and decodes its claims into dst.
func (s *Service) Parse(token string, dst Claims) error {
	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		popts = append(popts, jwt.WithIssuer(s.issuer))
	}
	for _, aud := range s.audience {
		popts = append(popts, jwt.WithAudience(aud))
	}

	parsed, err := jwt.ParseWithClaims(token, dst, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedMethod, t.Header["alg"])
		}
		return s.secret, nil
	}, popts...)

	switch {
	case err == nil && parsed.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidSignature, err)
	case err != nil:
		return errors.Join(ErrInvalidToken, err)
	default:
		return ErrInvalidToken
	}
}
