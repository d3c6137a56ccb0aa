package internal

import (
	"context"
	"encoding/json"
)

// Context is the per-call bundle of identity and request metadata threaded
// through the stage pipeline.
//
// Context is a value type. Every With* method returns a derived copy and
// leaves the receiver untouched, so a stage can never change what an outer
// stage observes.
type Context struct {
	ctx       context.Context
	user      *User
	input     any
	rawInput  json.RawMessage
	ip        string
	userAgent string
	path      string
}

// NewContext creates a Context for a single call.
// A nil user means the call is unauthenticated.
func NewContext(ctx context.Context, path, ip, userAgent string, user *User) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{
		ctx:       ctx,
		path:      path,
		ip:        ip,
		userAgent: userAgent,
		user:      cloneUser(user),
	}
}

// Context returns the underlying context.Context (cancellation, deadlines,
// request-scoped values).
func (c Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Path returns the procedure path of the call.
func (c Context) Path() string { return c.path }

// IP returns the caller's network origin.
func (c Context) IP() string { return c.ip }

// UserAgent returns the User-Agent header, empty when absent.
func (c Context) UserAgent() string { return c.userAgent }

// User returns a copy of the authenticated user.
// The second value is false for anonymous calls.
func (c Context) User() (User, bool) {
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

// UserID returns the authenticated user's ID or an empty string.
func (c Context) UserID() string {
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// IsAuthenticated reports whether a user is attached.
func (c Context) IsAuthenticated() bool {
	return c.user != nil
}

// HasRole reports whether the attached user satisfies the required role.
func (c Context) HasRole(role Role) bool {
	return c.user.HasRole(role)
}

// RawInput returns the undecoded call input as delivered by the transport.
func (c Context) RawInput() json.RawMessage { return c.rawInput }

// Input returns the validated input set by the validation stage, or nil.
func (c Context) Input() any { return c.input }

// Value returns a request-scoped value from the underlying context.Context.
func (c Context) Value(key any) any {
	return c.Context().Value(key)
}

// WithUser returns a copy with the given user attached.
func (c Context) WithUser(u *User) Context {
	c.user = cloneUser(u)
	return c
}

// WithInput returns a copy carrying validated input.
func (c Context) WithInput(v any) Context {
	c.input = v
	return c
}

// WithRawInput returns a copy carrying undecoded input.
func (c Context) WithRawInput(raw json.RawMessage) Context {
	c.rawInput = raw
	return c
}

// WithContext returns a copy bound to ctx.
func (c Context) WithContext(ctx context.Context) Context {
	if ctx != nil {
		c.ctx = ctx
	}
	return c
}

// WithValue returns a copy whose context.Context carries key/value.
func (c Context) WithValue(key, value any) Context {
	c.ctx = context.WithValue(c.Context(), key, value)
	return c
}

// InputAs returns the validated input as T.
// The second value is false if no input is set or it has another type.
func InputAs[T any](c Context) (T, bool) {
	v, ok := c.input.(T)
	return v, ok
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
