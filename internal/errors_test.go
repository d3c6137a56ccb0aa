package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/internal"
)

func TestNewAppError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind    internal.Kind
		status  int
		message string
	}{
		{internal.KindNotFound, http.StatusNotFound, "Resources not found"},
		{internal.KindValidation, http.StatusBadRequest, "Invalid request data"},
		{internal.KindAuthentication, http.StatusUnauthorized, "Unauthorized"},
		{internal.KindForbidden, http.StatusForbidden, "Forbidden access"},
		{internal.KindDatabase, http.StatusInternalServerError, "Database error"},
		{internal.KindRateLimit, http.StatusTooManyRequests, "Too many requests, please try again later"},
		{internal.KindInternal, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()
			err := internal.NewAppError(tc.kind, "")
			require.Equal(t, tc.kind, err.Kind)
			require.Equal(t, tc.status, err.StatusCode())
			require.Equal(t, tc.message, err.Message)
			require.Equal(t, tc.message, err.Error())
			require.True(t, err.Operational)
		})
	}

	t.Run("custom message wins", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrAuthentication("You must be logged in to access this resource")
		require.Equal(t, "You must be logged in to access this resource", err.Message)
		require.Equal(t, http.StatusUnauthorized, err.Code)
	})

	t.Run("unknown kind maps to 500", func(t *testing.T) {
		t.Parallel()
		err := internal.NewAppError(internal.Kind("TEAPOT"), "")
		require.Equal(t, http.StatusInternalServerError, err.StatusCode())
		require.Equal(t, "Internal server error", err.Message)
	})

	t.Run("internal errors are not operational", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.ErrInternal("").Operational)
		require.True(t, internal.ErrInternal("", internal.WithOperational(true)).Operational)
	})

	t.Run("stack trace names the caller", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrNotFound("")
		require.Contains(t, err.StackTrace(), "TestNewAppError")
	})
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	details := map[string]string{"email": "required"}

	t.Run("kept for validation", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrValidation("", internal.WithDetails(details))
		require.Equal(t, details, err.Details)
	})

	t.Run("kept for database", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrDatabase("", internal.WithDetails(details))
		require.Equal(t, details, err.Details)
	})

	t.Run("dropped for other kinds", func(t *testing.T) {
		t.Parallel()
		for _, fn := range []func(string, ...internal.AppErrorOption) *internal.AppError{
			internal.ErrNotFound,
			internal.ErrAuthentication,
			internal.ErrForbidden,
			internal.ErrRateLimit,
			internal.ErrInternal,
		} {
			require.Nil(t, fn("", internal.WithDetails(details)).Details)
		}
	})
}

func TestAsAppError(t *testing.T) {
	t.Parallel()

	t.Run("wrapped error is recognized", func(t *testing.T) {
		t.Parallel()
		appErr := internal.ErrForbidden("")
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", appErr))
		require.True(t, internal.IsAppError(err))
		require.Same(t, appErr, internal.AsAppError(err))
		require.True(t, internal.IsKind(err, internal.KindForbidden))
		require.False(t, internal.IsKind(err, internal.KindNotFound))
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("plain error")
		require.False(t, internal.IsAppError(err))
		require.Nil(t, internal.AsAppError(err))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsAppError(nil))
		require.Nil(t, internal.AsAppError(nil))
	})

	t.Run("cause is unwrapped but not rendered", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("connection reset")
		err := internal.ErrDatabase("", internal.WithError(cause))
		require.ErrorIs(t, err, cause)
		require.Equal(t, "Database error", err.Error())
	})
}
