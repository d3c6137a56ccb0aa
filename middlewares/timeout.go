package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/rpcgate/internal"
)

// DefaultTimeout bounds a procedure call when Timeout gets a non-positive duration.
const DefaultTimeout = 30 * time.Second

type timeoutResult struct {
	result any
	err    error
}

// Timeout derives a deadline for the rest of the chain. If it passes first,
// the stage returns a TimeoutError without waiting; the handler keeps running
// in the background and should watch c.Context().Done().
func Timeout(d time.Duration) internal.Stage {
	if d <= 0 {
		d = DefaultTimeout
	}

	return internal.NewStage("timeout", func(c internal.Context, next internal.HandlerFunc) (any, error) {
		ctx, cancel := context.WithTimeout(c.Context(), d)
		defer cancel()

		done := make(chan timeoutResult, 1)
		go func() {
			var r timeoutResult
			defer func() {
				if p := recover(); p != nil {
					r = timeoutResult{err: &PanicError{Value: p}}
				}
				done <- r
			}()
			r.result, r.err = next(c.WithContext(ctx))
		}()

		select {
		case r := <-done:
			return r.result, r.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, &TimeoutError{Duration: d}
			}
			return nil, ctx.Err()
		}
	})
}
