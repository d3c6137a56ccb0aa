package middlewares_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/middlewares"
)

func TestAuthenticated(t *testing.T) {
	t.Parallel()

	t.Run("anonymous caller", func(t *testing.T) {
		t.Parallel()

		_, err := call(anonymous("me"), ok, middlewares.Authenticated())
		ae := internal.AsAppError(err)
		require.NotNil(t, ae)
		assert.Equal(t, internal.KindAuthentication, ae.Kind)
		assert.Equal(t, 401, ae.StatusCode())
		assert.Equal(t, middlewares.MsgLoginRequired, ae.Message)
	})

	t.Run("authenticated caller", func(t *testing.T) {
		t.Parallel()

		res, err := call(authenticated("me", internal.RoleViewer), ok, middlewares.Authenticated())
		require.NoError(t, err)
		assert.NotNil(t, res)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    internal.Context
		kind internal.Kind
		msg  string
	}{
		{"anonymous", anonymous("admin.stats"), internal.KindAuthentication, middlewares.MsgLoginRequired},
		{"wrong role", authenticated("admin.stats", internal.RoleUser), internal.KindForbidden, middlewares.MsgPermissionDenied},
		{"matching role", authenticated("admin.stats", internal.RoleAdmin), "", ""},
		{"super admin", authenticated("admin.stats", internal.RoleSuperAdmin), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var reached atomic.Bool
			_, err := call(tt.c, func(internal.Context) (any, error) {
				reached.Store(true)
				return "ok", nil
			}, middlewares.RequireRole(internal.RoleAdmin))

			if tt.kind == "" {
				require.NoError(t, err)
				assert.True(t, reached.Load())
				return
			}
			require.True(t, internal.IsKind(err, tt.kind))
			assert.Equal(t, tt.msg, internal.AsAppError(err).Message)
			assert.False(t, reached.Load())
		})
	}
}

func TestRequireAccess(t *testing.T) {
	t.Parallel()

	newAuthority := func(allow bool, err error) (*atomic.Int32, internal.ResourceAuthority) {
		var calls atomic.Int32
		return &calls, internal.ResourceAuthorityFunc(func(_ context.Context, userID, resource, action string) (bool, error) {
			calls.Add(1)
			if userID != "user-123" || resource != "dataSource" || action != "read" {
				return false, errors.New("unexpected arguments")
			}
			return allow, err
		})
	}

	t.Run("anonymous caller never reaches the authority", func(t *testing.T) {
		t.Parallel()

		calls, authority := newAuthority(true, nil)
		_, err := call(anonymous("dataSource.list"), ok, middlewares.RequireAccess(authority, "dataSource", "read"))
		require.True(t, internal.IsKind(err, internal.KindAuthentication))
		assert.Zero(t, calls.Load())
	})

	t.Run("granted", func(t *testing.T) {
		t.Parallel()

		calls, authority := newAuthority(true, nil)
		_, err := call(authenticated("dataSource.list", internal.RoleUser), ok, middlewares.RequireAccess(authority, "dataSource", "read"))
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("denied", func(t *testing.T) {
		t.Parallel()

		calls, authority := newAuthority(false, nil)
		_, err := call(authenticated("dataSource.list", internal.RoleUser), ok, middlewares.RequireAccess(authority, "dataSource", "read"))
		require.True(t, internal.IsKind(err, internal.KindForbidden))
		assert.Equal(t, middlewares.MsgPermissionDenied, internal.AsAppError(err).Message)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("authority error propagates", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("policy backend down")
		calls, authority := newAuthority(false, boom)
		_, err := call(authenticated("dataSource.list", internal.RoleUser), ok, middlewares.RequireAccess(authority, "dataSource", "read"))
		require.ErrorIs(t, err, boom)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("static grants", func(t *testing.T) {
		t.Parallel()

		grants := internal.NewStaticGrants(map[string][]string{"user-123": {"dataSource:*"}})
		_, err := call(authenticated("dataSource.list", internal.RoleUser), ok, middlewares.RequireAccess(grants, "dataSource", "read"))
		require.NoError(t, err)

		_, err = call(authenticated("dashboard.view", internal.RoleUser), ok, middlewares.RequireAccess(grants, "dashboard", "read"))
		require.True(t, internal.IsKind(err, internal.KindForbidden))
	})
}
