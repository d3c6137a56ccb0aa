package middlewares

import (
	"github.com/dmitrymomot/rpcgate/internal"
)

// Authenticated rejects anonymous callers.
func Authenticated() internal.Stage {
	return internal.NewStage("authenticated", func(c internal.Context, next internal.HandlerFunc) (any, error) {
		if !c.IsAuthenticated() {
			return nil, internal.ErrAuthentication(MsgLoginRequired)
		}
		return next(c)
	})
}

// RequireRole rejects anonymous callers with an Authentication error and
// callers without role with a Forbidden error. Super admins pass every check.
func RequireRole(role internal.Role) internal.Stage {
	return internal.NewStage("role:"+role.String(), func(c internal.Context, next internal.HandlerFunc) (any, error) {
		if !c.IsAuthenticated() {
			return nil, internal.ErrAuthentication(MsgLoginRequired)
		}
		if !c.HasRole(role) {
			return nil, internal.ErrForbidden(MsgPermissionDenied)
		}
		return next(c)
	})
}

// RequireAccess asks authority whether the caller may perform action on
// resource. The authority is consulted exactly once per call; its errors
// propagate unchanged. A nil authority allows every authenticated caller.
func RequireAccess(authority internal.ResourceAuthority, resource, action string) internal.Stage {
	if authority == nil {
		authority = internal.AllowAll()
	}

	return internal.NewStage("access:"+resource+":"+action, func(c internal.Context, next internal.HandlerFunc) (any, error) {
		if !c.IsAuthenticated() {
			return nil, internal.ErrAuthentication(MsgLoginRequired)
		}
		ok, err := authority.Check(c.Context(), c.UserID(), resource, action)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, internal.ErrForbidden(MsgPermissionDenied)
		}
		return next(c)
	})
}
