package internal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/pkg/jwt"
)

func TestStaticVerifier(t *testing.T) {
	t.Parallel()

	v := internal.NewStaticVerifier(internal.MockUser())

	u, err := v.Verify(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, "user-123", u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, internal.RoleUser, u.Role)
	require.Equal(t, internal.StatusActive, u.Status)

	_, err = v.Verify(context.Background(), "  ")
	require.ErrorIs(t, err, internal.ErrUnknownToken)
}

func TestJWTVerifier(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New("test-secret", jwt.WithIssuer("rpcgate"), jwt.WithTTL(time.Hour))
	require.NoError(t, err)
	v := internal.NewJWTVerifier(svc)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		token, err := internal.IssueToken(svc, internal.User{
			ID:        "u-1",
			Email:     "admin@example.com",
			FirstName: "Ada",
			Role:      internal.RoleAdmin,
		})
		require.NoError(t, err)

		u, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, "u-1", u.ID)
		require.Equal(t, "admin@example.com", u.Email)
		require.Equal(t, "Ada", u.FirstName)
		require.Equal(t, internal.RoleAdmin, u.Role)
		require.Equal(t, internal.StatusActive, u.Status)
		require.NotNil(t, u.LastLoginAt)
	})

	t.Run("unknown role is rejected at issue time", func(t *testing.T) {
		t.Parallel()
		_, err := internal.IssueToken(svc, internal.User{ID: "u-1", Role: "ROOT"})
		require.ErrorIs(t, err, internal.ErrInvalidClaims)
	})

	t.Run("forged role is rejected at verify time", func(t *testing.T) {
		t.Parallel()
		token, err := svc.Generate(&internal.UserClaims{
			Role:             "ROOT",
			RegisteredClaims: svc.RegisteredClaims("u-1"),
		})
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, internal.ErrInvalidClaims)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Parallel()
		token, err := svc.Generate(&internal.UserClaims{
			Role:             internal.RoleUser,
			RegisteredClaims: svc.RegisteredClaims(""),
		})
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, internal.ErrInvalidClaims)
	})

	t.Run("other secret", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New("other-secret", jwt.WithIssuer("rpcgate"))
		require.NoError(t, err)
		token, err := internal.IssueToken(other, internal.MockUser())
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})
}
