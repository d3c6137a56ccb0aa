package middlewares

import (
	"errors"
	"fmt"
	"time"
)

// Messages returned to callers by the stages in this package.
const (
	MsgLoginRequired     = "You must be logged in to access this resource"
	MsgPermissionDenied  = "You do not have permission to access this resource"
	MsgTooManyRequests   = "Too many requests, please try again later"
	MsgUnexpectedError   = "An unexpected error occurred"
	MsgInvalidInput      = "Invalid input data"
	MsgRateLimitDegraded = "Rate limiting is temporarily unavailable"
	MsgTimeout           = "The request took too long to complete"
)

// PanicError represents a panic recovered inside a pipeline or handler.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError is returned by the Timeout stage when the deadline passes
// before the rest of the chain returns.
type TimeoutError struct {
	Duration time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("procedure timed out after %s", e.Duration)
}

// IsPanicError reports whether err wraps a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsTimeoutError reports whether err wraps a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// AsPanicError extracts the PanicError from err if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
