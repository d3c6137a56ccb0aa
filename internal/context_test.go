package internal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/internal"
)

type ctxKey struct{}

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("derivations leave the original untouched", func(t *testing.T) {
		t.Parallel()
		base := internal.NewContext(context.Background(), "health", "1.2.3.4", "ua", nil)

		u := internal.MockUser()
		withUser := base.WithUser(&u)
		withInput := withUser.WithInput("payload")
		withValue := withInput.WithValue(ctxKey{}, "v")

		require.False(t, base.IsAuthenticated())
		require.Nil(t, base.Input())
		require.Nil(t, base.Value(ctxKey{}))

		require.True(t, withUser.IsAuthenticated())
		require.Nil(t, withUser.Input())

		require.Equal(t, "payload", withInput.Input())
		require.Equal(t, "v", withValue.Value(ctxKey{}))
		require.Equal(t, "user-123", withValue.UserID())
	})

	t.Run("user is copied on attach", func(t *testing.T) {
		t.Parallel()
		u := internal.MockUser()
		c := internal.NewContext(context.Background(), "p", "ip", "", &u)
		u.Role = internal.RoleSuperAdmin

		got, ok := c.User()
		require.True(t, ok)
		require.Equal(t, internal.RoleUser, got.Role)
	})

	t.Run("anonymous accessors", func(t *testing.T) {
		t.Parallel()
		c := internal.NewContext(nil, "p", "ip", "", nil) //nolint:staticcheck
		_, ok := c.User()
		require.False(t, ok)
		require.Empty(t, c.UserID())
		require.False(t, c.HasRole(internal.RoleViewer))
		require.NotNil(t, c.Context())
	})

	t.Run("typed input", func(t *testing.T) {
		t.Parallel()
		type in struct{ Email string }
		c := internal.NewContext(context.Background(), "p", "ip", "", nil).WithInput(in{Email: "a@b.c"})

		v, ok := internal.InputAs[in](c)
		require.True(t, ok)
		require.Equal(t, "a@b.c", v.Email)

		_, ok = internal.InputAs[string](c)
		require.False(t, ok)
	})
}

func TestUserHasRole(t *testing.T) {
	t.Parallel()

	super := internal.User{Role: internal.RoleSuperAdmin}
	admin := internal.User{Role: internal.RoleAdmin}

	require.True(t, admin.HasRole(internal.RoleAdmin))
	require.False(t, admin.HasRole(internal.RoleSuperAdmin))
	require.True(t, super.HasRole(internal.RoleAdmin))
	require.True(t, super.HasRole(internal.RoleViewer))

	var nobody *internal.User
	require.False(t, nobody.HasRole(internal.RoleViewer))
}

func TestParseRoleAndStatus(t *testing.T) {
	t.Parallel()

	r, err := internal.ParseRole("ADMIN")
	require.NoError(t, err)
	require.Equal(t, internal.RoleAdmin, r)

	_, err = internal.ParseRole("admin")
	require.Error(t, err)

	s, err := internal.ParseStatus("PENDING_VERIFICATION")
	require.NoError(t, err)
	require.Equal(t, internal.StatusPendingVerification, s)

	_, err = internal.ParseStatus("DELETED")
	require.Error(t, err)
}
