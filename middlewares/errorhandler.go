package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dmitrymomot/rpcgate/internal"
)

// DefaultStackSize is the maximum stack trace captured for a recovered panic.
const DefaultStackSize = 4096

// ErrorHandlerOption configures the ErrorHandler stage.
type ErrorHandlerOption func(*errorHandlerConfig)

type errorHandlerConfig struct {
	stackSize int
}

// WithStackSize sets the panic stack trace buffer size. Zero disables stacks.
func WithStackSize(size int) ErrorHandlerOption {
	return func(cfg *errorHandlerConfig) {
		if size >= 0 {
			cfg.stackSize = size
		}
	}
}

// ErrorHandler normalizes failures from the rest of the chain. AppErrors pass
// through unchanged. Panics and any other error are logged and replaced with
// an Internal error carrying a generic message; the original is kept as the
// cause but never rendered.
func ErrorHandler(log *slog.Logger, opts ...ErrorHandlerOption) internal.Stage {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cfg := &errorHandlerConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.NewStage("error_handler", func(c internal.Context, next internal.HandlerFunc) (result any, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			pe := &PanicError{Value: r}
			if cfg.stackSize > 0 {
				buf := make([]byte, cfg.stackSize)
				pe.Stack = buf[:runtime.Stack(buf, false)]
			}
			log.ErrorContext(c.Context(), "panic recovered",
				slog.String("path", c.Path()),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(pe.Stack)),
			)
			result, err = nil, internal.ErrInternal(MsgUnexpectedError, internal.WithError(pe))
		}()

		result, err = next(c)
		if err == nil || internal.IsAppError(err) {
			return result, err
		}

		var te *TimeoutError
		if errors.As(err, &te) {
			log.WarnContext(c.Context(), "procedure timed out",
				slog.String("path", c.Path()),
				slog.Duration("timeout", te.Duration),
			)
			return nil, internal.ErrInternal(MsgTimeout, internal.WithError(err))
		}

		if errors.Is(err, context.Canceled) {
			log.WarnContext(c.Context(), "procedure call cancelled",
				slog.String("path", c.Path()),
			)
			return nil, internal.ErrInternal(MsgUnexpectedError, internal.WithError(err))
		}

		log.ErrorContext(c.Context(), "unexpected procedure error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return nil, internal.ErrInternal(MsgUnexpectedError, internal.WithError(err))
	})
}
