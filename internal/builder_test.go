package internal_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/internal"
)

func header(kv ...string) http.Header {
	h := make(http.Header)
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		header     http.Header
		remoteAddr string
		want       string
	}{
		{"first forwarded element", header("X-Forwarded-For", " 1.2.3.4 , 5.6.7.8"), "9.9.9.9:1234", "1.2.3.4"},
		{"remote addr host", header(), "10.0.0.1:5555", "10.0.0.1"},
		{"ipv6 remote addr", header(), "[::1]:5555", "::1"},
		{"remote addr without port", header(), "10.0.0.2", "10.0.0.2"},
		{"empty forwarded element falls back", header("X-Forwarded-For", " , 5.6.7.8"), "10.0.0.3:1", "10.0.0.3"},
		{"nothing known", header(), "", internal.UnknownIP},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, internal.ClientIP(tc.header, tc.remoteAddr))
		})
	}
}

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("empty sources returns false", func(t *testing.T) {
		t.Parallel()
		v, ok := internal.NewExtractor().Extract(internal.Request{Header: header()})
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("bearer scheme is case-insensitive", func(t *testing.T) {
		t.Parallel()
		ext := internal.NewExtractor(internal.FromBearerToken())
		for _, h := range []string{"Bearer abc", "bearer abc", "BEARER abc"} {
			v, ok := ext.Extract(internal.Request{Header: header("Authorization", h)})
			require.True(t, ok, h)
			require.Equal(t, "abc", v)
		}
	})

	t.Run("bearer without token is ignored", func(t *testing.T) {
		t.Parallel()
		ext := internal.NewExtractor(internal.FromBearerToken())
		for _, h := range []string{"Bearer ", "Bearer", "Basic abc", "Token abc"} {
			_, ok := ext.Extract(internal.Request{Header: header("Authorization", h)})
			require.False(t, ok, h)
		}
	})

	t.Run("falls through to cookie", func(t *testing.T) {
		t.Parallel()
		ext := internal.NewExtractor(internal.FromBearerToken(), internal.FromCookie("access_token"))
		v, ok := ext.Extract(internal.Request{Header: header("Cookie", "access_token=xyz")})
		require.True(t, ok)
		require.Equal(t, "xyz", v)
	})

	t.Run("header source", func(t *testing.T) {
		t.Parallel()
		ext := internal.NewExtractor(internal.FromHeader("X-Api-Key"))
		v, ok := ext.Extract(internal.Request{Header: header("X-Api-Key", "k1")})
		require.True(t, ok)
		require.Equal(t, "k1", v)
	})
}

func TestContextBuilder(t *testing.T) {
	t.Parallel()

	user := internal.MockUser()
	okVerifier := internal.TokenVerifierFunc(func(_ context.Context, token string) (*internal.User, error) {
		if token != "good" {
			return nil, errors.New("bad token")
		}
		u := user
		return &u, nil
	})

	req := func(auth string) internal.Request {
		return internal.Request{
			Header:     header("Authorization", auth, "User-Agent", "curl/8", "X-Forwarded-For", "203.0.113.7"),
			RemoteAddr: "10.0.0.1:1234",
			Path:       "health",
			Input:      []byte(`{"a":1}`),
		}
	}

	t.Run("valid token attaches user and metadata", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContextBuilder(okVerifier).Build(context.Background(), req("Bearer good"))
		got, ok := c.User()
		require.True(t, ok)
		require.Equal(t, user, got)
		require.Equal(t, "203.0.113.7", c.IP())
		require.Equal(t, "curl/8", c.UserAgent())
		require.Equal(t, "health", c.Path())
		require.JSONEq(t, `{"a":1}`, string(c.RawInput()))
	})

	t.Run("no token is anonymous", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContextBuilder(okVerifier).Build(context.Background(), req(""))
		require.False(t, c.IsAuthenticated())
	})

	t.Run("verifier error is logged and anonymous", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))
		c := internal.NewContextBuilder(okVerifier, internal.WithBuilderLogger(log)).
			Build(context.Background(), req("Bearer bad"))
		require.False(t, c.IsAuthenticated())
		require.Contains(t, buf.String(), "token verification failed")
	})

	t.Run("verifier panic is contained", func(t *testing.T) {
		t.Parallel()
		panicky := internal.TokenVerifierFunc(func(context.Context, string) (*internal.User, error) {
			panic("boom")
		})
		var c internal.Context
		require.NotPanics(t, func() {
			c = internal.NewContextBuilder(panicky).Build(context.Background(), req("Bearer good"))
		})
		require.False(t, c.IsAuthenticated())
	})

	t.Run("nil user without error is anonymous", func(t *testing.T) {
		t.Parallel()
		nilUser := internal.TokenVerifierFunc(func(context.Context, string) (*internal.User, error) {
			return nil, nil
		})
		c := internal.NewContextBuilder(nilUser).Build(context.Background(), req("Bearer good"))
		require.False(t, c.IsAuthenticated())
	})

	t.Run("nil verifier is anonymous", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContextBuilder(nil).Build(context.Background(), req("Bearer good"))
		require.False(t, c.IsAuthenticated())
	})

	t.Run("ip header can be disabled", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContextBuilder(nil, internal.WithIPHeader("")).Build(context.Background(), req(""))
		require.Equal(t, "10.0.0.1", c.IP())
	})

	t.Run("custom token extractor", func(t *testing.T) {
		t.Parallel()
		b := internal.NewContextBuilder(okVerifier, internal.WithTokenExtractor(internal.FromHeader("X-Token")))
		r := req("")
		r.Header.Set("X-Token", "good")
		c := b.Build(context.Background(), r)
		require.True(t, c.IsAuthenticated())
	})
}
