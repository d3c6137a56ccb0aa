package rpcgate

import (
	"io"
	"time"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/pkg/cache"
	"github.com/dmitrymomot/rpcgate/pkg/jwt"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
)

// Type aliases - public API
type (
	// App serves a procedure registry over HTTP.
	App = internal.App

	// Context is the immutable per-call bundle handed to stages and handlers.
	Context = internal.Context

	// HandlerFunc is the terminal handler of a procedure.
	HandlerFunc = internal.HandlerFunc

	// Stage is one named step of a procedure pipeline.
	Stage = internal.Stage

	// StageFunc is the signature of a stage body.
	StageFunc = internal.StageFunc

	// Procedure is a named operation with a frozen stage list.
	Procedure = internal.Procedure

	// Builder composes stages into procedures.
	Builder = internal.Builder

	// Registry maps procedure names to procedures.
	Registry = internal.Registry

	// Request is the transport-neutral view of an incoming call.
	Request = internal.Request

	// ContextBuilder turns requests into Contexts.
	ContextBuilder = internal.ContextBuilder

	// BuilderOption configures a ContextBuilder.
	BuilderOption = internal.BuilderOption

	// TokenVerifier resolves bearer tokens to users.
	TokenVerifier = internal.TokenVerifier

	// TokenVerifierFunc adapts a function to TokenVerifier.
	TokenVerifierFunc = internal.TokenVerifierFunc

	// ResourceAuthority decides resource-level access.
	ResourceAuthority = internal.ResourceAuthority

	// ResourceAuthorityFunc adapts a function to ResourceAuthority.
	ResourceAuthorityFunc = internal.ResourceAuthorityFunc

	// StaticGrants is an in-memory ResourceAuthority.
	StaticGrants = internal.StaticGrants

	// User is the authenticated identity of a call.
	User = internal.User

	// UserClaims is the claim set of access tokens.
	UserClaims = internal.UserClaims

	// Role is the access level of a user.
	Role = internal.Role

	// Status is the account state of a user.
	Status = internal.Status

	// AppError is the error type rendered by the transport.
	AppError = internal.AppError

	// AppErrorOption configures an AppError.
	AppErrorOption = internal.AppErrorOption

	// Kind classifies an AppError.
	Kind = internal.Kind

	// ErrorResponse is the JSON body of a failed call.
	ErrorResponse = internal.ErrorResponse

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Schema parses and validates raw procedure input into T.
type Schema[T any] = internal.Schema[T]

// SchemaFunc adapts a function to Schema.
type SchemaFunc[T any] = internal.SchemaFunc[T]

// Roles, highest privilege first.
const (
	RoleSuperAdmin = internal.RoleSuperAdmin
	RoleAdmin      = internal.RoleAdmin
	RoleUser       = internal.RoleUser
	RoleViewer     = internal.RoleViewer
)

// Account statuses.
const (
	StatusActive              = internal.StatusActive
	StatusInactive            = internal.StatusInactive
	StatusSuspended           = internal.StatusSuspended
	StatusPendingVerification = internal.StatusPendingVerification
)

// Error kinds.
const (
	KindNotFound       = internal.KindNotFound
	KindValidation     = internal.KindValidation
	KindAuthentication = internal.KindAuthentication
	KindForbidden      = internal.KindForbidden
	KindDatabase       = internal.KindDatabase
	KindRateLimit      = internal.KindRateLimit
	KindInternal       = internal.KindInternal
)

// Constructors

// New creates an application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	stack := rpcgate.NewStack(store, rpcgate.WithStackLogger(log))
//	app := rpcgate.New(
//	    rpcgate.WithLogger(log),
//	    rpcgate.WithTokenVerifier(rpcgate.NewStaticVerifier(rpcgate.MockUser())),
//	    rpcgate.WithProcedures(procedures.Health(stack), procedures.Register(stack, log)),
//	)
//
//	err := app.Run(":7001", rpcgate.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewBuilder creates a procedure builder with the given stages.
func NewBuilder(stages ...Stage) Builder {
	return internal.NewBuilder(stages...)
}

// NewRegistry creates a registry. It panics on invalid or duplicate procedures.
func NewRegistry(procs ...*Procedure) *Registry {
	return internal.NewRegistry(procs...)
}

// NewStage names a stage function.
func NewStage(name string, fn StageFunc) Stage {
	return internal.NewStage(name, fn)
}

// Handle adapts a typed handler. The input must have been stored by a
// validation stage; otherwise the call fails with an Internal error.
//
// Example:
//
//	stack.Public().Use(middlewares.Validate(schema)).Mutation("register",
//	    rpcgate.Handle(func(c rpcgate.Context, in RegisterInput) (any, error) {
//	        return nil, nil
//	    }),
//	)
func Handle[In, Out any](fn func(c Context, in In) (Out, error)) HandlerFunc {
	return internal.Handle(fn)
}

// InputAs returns the validated input stored on c.
func InputAs[T any](c Context) (T, bool) {
	return internal.InputAs[T](c)
}

// NewContextBuilder creates a context builder. A nil verifier makes every
// call anonymous.
func NewContextBuilder(v TokenVerifier, opts ...BuilderOption) *ContextBuilder {
	return internal.NewContextBuilder(v, opts...)
}

// NewStaticVerifier creates a development verifier that maps any non-empty
// token to u.
func NewStaticVerifier(u User) TokenVerifier {
	return internal.NewStaticVerifier(u)
}

// MockUser returns the development identity.
func MockUser() User {
	return internal.MockUser()
}

// NewJWTVerifier creates a verifier for HS256 access tokens.
func NewJWTVerifier(svc *jwt.Service) TokenVerifier {
	return internal.NewJWTVerifier(svc)
}

// IssueToken signs an access token for u.
func IssueToken(svc *jwt.Service, u User) (string, error) {
	return internal.IssueToken(svc, u)
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	return internal.ParseRole(s)
}

// ParseStatus converts s into a Status.
func ParseStatus(s string) (Status, error) {
	return internal.ParseStatus(s)
}

// AllowAll returns an authority that grants every request.
func AllowAll() ResourceAuthority {
	return internal.AllowAll()
}

// NewStaticGrants creates an authority from user ID to "resource:action" grants.
func NewStaticGrants(grants map[string][]string) *StaticGrants {
	return internal.NewStaticGrants(grants)
}

// LoadStaticGrants reads grants from YAML.
func LoadStaticGrants(r io.Reader) (*StaticGrants, error) {
	return internal.LoadStaticGrants(r)
}

// LoadStaticGrantsFile reads grants from a YAML file.
func LoadStaticGrantsFile(path string) (*StaticGrants, error) {
	return internal.LoadStaticGrantsFile(path)
}

// CachedAuthority remembers decisions of next for ttl. Errors are not cached.
func CachedAuthority(next ResourceAuthority, c cache.Cache[bool], ttl time.Duration) ResourceAuthority {
	return internal.CachedAuthority(next, c, ttl)
}

// Errors

// ErrNotFound creates a NotFound (404) error.
func ErrNotFound(message string, opts ...AppErrorOption) *AppError {
	return internal.ErrNotFound(message, opts...)
}

// ErrValidation creates a Validation (400) error.
func ErrValidation(message string, opts ...AppErrorOption) *AppError {
	return internal.ErrValidation(message, opts...)
}

// ErrAuthentication creates an Authentication (401) error.
func ErrAuthentication(message string, opts ...AppErrorOption) *AppError {
	return internal.ErrAuthentication(message, opts...)
}

// ErrForbidden creates a Forbidden (403) error.
func ErrForbidden(message string, opts ...AppErrorOption) *AppError {
	return internal.ErrForbidden(message, opts...)
}

// ErrDatabase creates a Database (500) error.
func ErrDatabase(message string, opts ...AppErrorOption) *AppError {
	return internal.ErrDatabase(message, opts...)
}

// ErrRateLimit creates a RateLimit (429) error.
func ErrRateLimit(message string, opts ...AppErrorOption) *AppError {
	return internal.ErrRateLimit(message, opts...)
}

// ErrInternal creates a non-operational Internal (500) error.
func ErrInternal(message string, opts ...AppErrorOption) *AppError {
	return internal.ErrInternal(message, opts...)
}

// WithDetails attaches structured details to Validation and Database errors.
func WithDetails(details any) AppErrorOption {
	return internal.WithDetails(details)
}

// WithError records the underlying cause.
func WithError(err error) AppErrorOption {
	return internal.WithError(err)
}

// WithOperational overrides the operational flag.
func WithOperational(operational bool) AppErrorOption {
	return internal.WithOperational(operational)
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	return internal.IsAppError(err)
}

// AsAppError returns the first AppError in err's chain, or nil.
func AsAppError(err error) *AppError {
	return internal.AsAppError(err)
}

// IsKind reports whether err wraps an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	return internal.IsKind(err, kind)
}
