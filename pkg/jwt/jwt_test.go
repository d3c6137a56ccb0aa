package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/pkg/jwt"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func TestService(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("empty secret", func(t *testing.T) {
		t.Parallel()
		_, err := jwt.New("")
		require.ErrorIs(t, err, jwt.ErrEmptySecret)
	})

	t.Run("generate and parse", func(t *testing.T) {
		t.Parallel()
		svc, err := jwt.New("s3cret", jwt.WithIssuer("rpcgate"), jwt.WithAudience("api"), jwt.WithClock(clock))
		require.NoError(t, err)

		token, err := svc.Generate(&claims{Email: "a@b.c", RegisteredClaims: svc.RegisteredClaims("user-1")})
		require.NoError(t, err)

		var got claims
		require.NoError(t, svc.Parse(token, &got))
		require.Equal(t, "a@b.c", got.Email)
		require.Equal(t, "user-1", got.Subject)
		require.Equal(t, "rpcgate", got.Issuer)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		issuer, err := jwt.New("s3cret", jwt.WithTTL(time.Minute), jwt.WithClock(clock))
		require.NoError(t, err)
		token, err := issuer.Generate(&claims{RegisteredClaims: issuer.RegisteredClaims("user-1")})
		require.NoError(t, err)

		later, err := jwt.New("s3cret", jwt.WithClock(func() time.Time { return now.Add(time.Hour) }))
		require.NoError(t, err)
		require.ErrorIs(t, later.Parse(token, &claims{}), jwt.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		a, _ := jwt.New("a", jwt.WithClock(clock))
		b, _ := jwt.New("b", jwt.WithClock(clock))
		token, err := a.Generate(&claims{RegisteredClaims: a.RegisteredClaims("user-1")})
		require.NoError(t, err)
		require.ErrorIs(t, b.Parse(token, &claims{}), jwt.ErrInvalidSignature)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		t.Parallel()
		a, _ := jwt.New("s", jwt.WithIssuer("a"), jwt.WithClock(clock))
		b, _ := jwt.New("s", jwt.WithIssuer("b"), jwt.WithClock(clock))
		token, err := a.Generate(&claims{RegisteredClaims: a.RegisteredClaims("user-1")})
		require.NoError(t, err)
		require.ErrorIs(t, b.Parse(token, &claims{}), jwt.ErrInvalidToken)
	})

	t.Run("none algorithm is refused", func(t *testing.T) {
		t.Parallel()
		svc, _ := jwt.New("s", jwt.WithClock(clock))
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, &claims{RegisteredClaims: svc.RegisteredClaims("user-1")}).
			SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		require.ErrorIs(t, svc.Parse(token, &claims{}), jwt.ErrInvalidSignature)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		svc, _ := jwt.New("s")
		require.ErrorIs(t, svc.Parse("not-a-token", &claims{}), jwt.ErrInvalidToken)
	})
}
