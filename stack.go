package rpcgate

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
	"github.com/dmitrymomot/rpcgate/pkg/ratelimit"
)

// Resources guarded by the named resource-gated compositions.
const (
	ResourceDataSource = "dataSource"
	ResourceDashboard  = "dashboard"

	ActionRead = "read"
)

// Stack holds the collaborators shared by every procedure and hands out the
// canonical builders. Every builder starts with the base stages in this
// order: logging, error normalization, optional timeout, rate limit.
// Stack values are immutable; WithRateLimit returns a copy.
type Stack struct {
	store       ratelimit.Store
	log         *slog.Logger
	authority   ResourceAuthority
	policy      middlewares.RateLimitPolicy
	rateOpts    []middlewares.RateLimitOption
	loggingOpts []middlewares.LoggingOption
	timeout     time.Duration
}

// StackOption configures a Stack.
type StackOption func(*Stack)

// WithStackLogger sets the logger used by the logging, error and rate-limit stages.
func WithStackLogger(l *slog.Logger) StackOption {
	return func(s *Stack) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAuthority sets the resource authority for resource-gated builders.
// Defaults to AllowAll.
func WithAuthority(a ResourceAuthority) StackOption {
	return func(s *Stack) {
		if a != nil {
			s.authority = a
		}
	}
}

// WithDefaultRateLimit replaces the base rate-limit policy.
// Defaults to middlewares.DefaultRateLimit (100 per minute per IP and path).
func WithDefaultRateLimit(p middlewares.RateLimitPolicy) StackOption {
	return func(s *Stack) {
		s.policy = p
	}
}

// WithRateLimitFailOpen lets calls through when the counter store fails.
func WithRateLimitFailOpen() StackOption {
	return func(s *Stack) {
		s.rateOpts = append(s.rateOpts, middlewares.WithFailOpen())
	}
}

// WithLoggingOptions passes options to the logging stage.
func WithLoggingOptions(opts ...middlewares.LoggingOption) StackOption {
	return func(s *Stack) {
		s.loggingOpts = append(s.loggingOpts, opts...)
	}
}

// WithCallTimeout bounds every call. Zero disables the timeout stage.
func WithCallTimeout(d time.Duration) StackOption {
	return func(s *Stack) {
		s.timeout = d
	}
}

// NewStack creates a Stack over store. A nil store falls back to an
// in-process ratelimit.Memory.
//
// Example:
//
//	stack := rpcgate.NewStack(ratelimit.NewRedis(client),
//	    rpcgate.WithStackLogger(log),
//	    rpcgate.WithAuthority(grants),
//	)
//	me := stack.Protected().Query("me", handler)
func NewStack(store ratelimit.Store, opts ...StackOption) *Stack {
	s := &Stack{
		store:     store,
		log:       logger.NewNope(),
		authority: AllowAll(),
		policy:    middlewares.DefaultRateLimit(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = ratelimit.NewMemory()
	}
	return s
}

// WithRateLimit returns a copy of s whose builders use policy instead of the
// base policy.
//
// Example:
//
//	stack.WithRateLimit(middlewares.AuthRateLimit()).Public().Mutation("login", h)
func (s *Stack) WithRateLimit(policy middlewares.RateLimitPolicy) *Stack {
	cp := *s
	cp.policy = policy
	return &cp
}

func (s *Stack) base() Builder {
	stages := []Stage{
		middlewares.Logging(s.log, s.loggingOpts...),
		middlewares.ErrorHandler(s.log),
	}
	if s.timeout > 0 {
		stages = append(stages, middlewares.Timeout(s.timeout))
	}
	rateOpts := append([]middlewares.RateLimitOption{middlewares.WithRateLimitLogger(s.log)}, s.rateOpts...)
	stages = append(stages, middlewares.RateLimit(s.store, s.policy, rateOpts...))
	return NewBuilder(stages...)
}

// Public returns the builder for procedures open to anonymous callers.
func (s *Stack) Public() Builder {
	return s.base()
}

// Protected requires an authenticated user.
func (s *Stack) Protected() Builder {
	return s.base().Use(middlewares.Authenticated())
}

// RoleGated requires role (SUPER_ADMIN always passes).
func (s *Stack) RoleGated(role Role) Builder {
	return s.base().Use(middlewares.RequireRole(role))
}

// ResourceGated asks the authority whether the user may perform action on resource.
func (s *Stack) ResourceGated(resource, action string) Builder {
	return s.base().Use(middlewares.RequireAccess(s.authority, resource, action))
}

// Admin requires the ADMIN role.
func (s *Stack) Admin() Builder {
	return s.RoleGated(RoleAdmin)
}

// SuperAdmin requires the SUPER_ADMIN role.
func (s *Stack) SuperAdmin() Builder {
	return s.RoleGated(RoleSuperAdmin)
}

// DataSource requires read access to data sources.
func (s *Stack) DataSource() Builder {
	return s.ResourceGated(ResourceDataSource, ActionRead)
}

// Dashboard requires read access to dashboards.
func (s *Stack) Dashboard() Builder {
	return s.ResourceGated(ResourceDashboard, ActionRead)
}

// Validated appends input validation to b. The handler reads the parsed
// input with Handle or InputAs.
//
// Example:
//
//	rpcgate.Validated(stack.Protected(), schema).Mutation("update", rpcgate.Handle(update))
func Validated[T any](b Builder, schema Schema[T]) Builder {
	return b.Use(middlewares.Validate(schema))
}
