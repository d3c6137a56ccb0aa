package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/rpcgate/pkg/jwt"
)

// Verifier errors.
var (
	ErrUnknownToken  = errors.New("token is not recognized")
	ErrInvalidClaims = errors.New("token claims are invalid")
)

// StaticVerifier accepts any non-empty token and resolves it to a fixed user.
// Suitable for development and tests only.
type StaticVerifier struct {
	user User
}

// NewStaticVerifier creates a verifier that always returns u.
func NewStaticVerifier(u User) *StaticVerifier {
	return &StaticVerifier{user: u}
}

// MockUser returns the development identity used by the default scaffold.
func MockUser() User {
	return User{
		ID:     "user-123",
		Email:  "user@example.com",
		Role:   RoleUser,
		Status: StatusActive,
	}
}

// Verify implements TokenVerifier.
func (v *StaticVerifier) Verify(_ context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnknownToken
	}
	u := v.user
	return &u, nil
}

// UserClaims is the claim set carried by access tokens.
type UserClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"given_name,omitempty"`
	LastName  string `json:"family_name,omitempty"`
	Role      Role   `json:"role"`
	Status    Status `json:"status"`
	jwt.RegisteredClaims
}

// JWTVerifier resolves HS256 access tokens to users.
type JWTVerifier struct {
	svc *jwt.Service
}

// NewJWTVerifier creates a verifier backed by svc.
func NewJWTVerifier(svc *jwt.Service) *JWTVerifier {
	return &JWTVerifier{svc: svc}
}

// Verify implements TokenVerifier.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*User, error) {
	var claims UserClaims
	if err := v.svc.Parse(token, &claims); err != nil {
		return nil, err
	}
	return claims.User()
}

// User converts claims into a User. The subject becomes the user ID.
func (c UserClaims) User() (*User, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	if !c.Role.Valid() {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidClaims, c.Role)
	}
	status := c.Status
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidClaims, c.Status)
	}

	u := &User{
		ID:        c.Subject,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Role:      c.Role,
		Status:    status,
	}
	if c.IssuedAt != nil {
		u.LastLoginAt = new(time.Time)
		*u.LastLoginAt = c.IssuedAt.Time
	}
	return u, nil
}

// IssueToken signs an access token for u.
func IssueToken(svc *jwt.Service, u User) (string, error) {
	if !u.Role.Valid() {
		return "", fmt.Errorf("%w: role %q", ErrInvalidClaims, u.Role)
	}
	return svc.Generate(&UserClaims{
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		Status:           u.Status,
		RegisteredClaims: svc.RegisteredClaims(u.ID),
	})
}
