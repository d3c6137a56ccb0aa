package internal

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Kind classifies an application error. The set is closed.
type Kind string

// Error kinds.
const (
	KindNotFound       Kind = "NOT_FOUND"
	KindValidation     Kind = "VALIDATION"
	KindAuthentication Kind = "AUTHENTICATION"
	KindForbidden      Kind = "FORBIDDEN"
	KindDatabase       Kind = "DATABASE"
	KindRateLimit      Kind = "RATE_LIMIT"
	KindInternal       Kind = "INTERNAL"
)

// StatusCode returns the HTTP status mapped to the kind.
// Unknown kinds map to 500.
func (k Kind) StatusCode() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// DefaultMessage returns the message used when an error is created without one.
func (k Kind) DefaultMessage() string {
	switch k {
	case KindNotFound:
		return "Resources not found"
	case KindValidation:
		return "Invalid request data"
	case KindAuthentication:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden access"
	case KindDatabase:
		return "Database error"
	case KindRateLimit:
		return "Too many requests, please try again later"
	default:
		return "Internal server error"
	}
}

// carriesDetails reports whether errors of this kind may expose structured details.
func (k Kind) carriesDetails() bool {
	return k == KindValidation || k == KindDatabase
}

// AppError is the typed application error understood by every pipeline stage
// and by the transport boundary.
type AppError struct {
	// Err is the underlying cause. It is logged, never rendered.
	Err error

	// Details is an optional structured payload (Validation and Database only).
	Details any

	// Message is the user-facing message.
	Message string

	// Kind is the error classification.
	Kind Kind

	// Code is the HTTP status code derived from Kind.
	Code int

	// Operational is true for expected, user-facing failures and false for bugs.
	Operational bool

	stack []uintptr
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.Code
}

func (e *AppError) StatusText() string {
	return http.StatusText(e.Code)
}

// StackTrace formats the call stack captured when the error was created.
func (e *AppError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// AppErrorOption configures an AppError.
type AppErrorOption func(*AppError)

// WithDetails attaches a structured payload.
// Ignored for kinds other than Validation and Database.
func WithDetails(details any) AppErrorOption {
	return func(e *AppError) {
		if e.Kind.carriesDetails() {
			e.Details = details
		}
	}
}

// WithError sets the underlying cause.
func WithError(err error) AppErrorOption {
	return func(e *AppError) {
		e.Err = err
	}
}

// WithOperational overrides the operational flag.
func WithOperational(operational bool) AppErrorOption {
	return func(e *AppError) {
		e.Operational = operational
	}
}

// NewAppError creates an AppError of the given kind.
// An empty message is replaced with the kind's default message.
func NewAppError(kind Kind, message string, opts ...AppErrorOption) *AppError {
	if message == "" {
		message = kind.DefaultMessage()
	}

	e := &AppError{
		Kind:        kind,
		Message:     message,
		Code:        kind.StatusCode(),
		Operational: true,
	}

	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	e.stack = pcs[:n]

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convenience constructors for each kind.

func ErrNotFound(message string, opts ...AppErrorOption) *AppError {
	return NewAppError(KindNotFound, message, opts...)
}

func ErrValidation(message string, opts ...AppErrorOption) *AppError {
	return NewAppError(KindValidation, message, opts...)
}

func ErrAuthentication(message string, opts ...AppErrorOption) *AppError {
	return NewAppError(KindAuthentication, message, opts...)
}

func ErrForbidden(message string, opts ...AppErrorOption) *AppError {
	return NewAppError(KindForbidden, message, opts...)
}

func ErrDatabase(message string, opts ...AppErrorOption) *AppError {
	return NewAppError(KindDatabase, message, opts...)
}

func ErrRateLimit(message string, opts ...AppErrorOption) *AppError {
	return NewAppError(KindRateLimit, message, opts...)
}

// ErrInternal creates an Internal error. Internal errors are bugs, so the
// operational flag defaults to false.
func ErrInternal(message string, opts ...AppErrorOption) *AppError {
	return NewAppError(KindInternal, message, append([]AppErrorOption{WithOperational(false)}, opts...)...)
}

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// AsAppError extracts the AppError from err if present.
// Returns nil if err does not wrap an AppError.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsKind reports whether err wraps an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	ae := AsAppError(err)
	return ae != nil && ae.Kind == kind
}

// Sentinel errors for registry and pipeline misuse.
var (
	ErrNilHandler          = errors.New("procedure handler is nil")
	ErrEmptyProcedureName  = errors.New("procedure name is empty")
	ErrDuplicateProcedure  = errors.New("procedure already registered")
	ErrInputNotValidated   = errors.New("procedure input has not been validated")
	ErrUnexpectedInputType = errors.New("procedure input has unexpected type")
)
