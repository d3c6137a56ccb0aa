package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/pkg/telemetry"
)

// LoggingOption configures the Logging stage.
type LoggingOption func(*loggingConfig)

type loggingConfig struct {
	tracer trace.Tracer
	now    func() time.Time
}

// WithTracer sets the tracer used for per-call spans.
// Defaults to the global provider's rpcgate tracer.
func WithTracer(t trace.Tracer) LoggingOption {
	return func(cfg *loggingConfig) {
		if t != nil {
			cfg.tracer = t
		}
	}
}

// Logging writes one record per call after it completes and wraps the call
// in a span. Successful calls log at Info, 4xx errors at Warn and everything
// else at Error. A panic is logged at Error and then re-raised.
func Logging(log *slog.Logger, opts ...LoggingOption) internal.Stage {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cfg := &loggingConfig{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	return internal.NewStage("logging", func(c internal.Context, next internal.HandlerFunc) (result any, err error) {
		tracer := cfg.tracer
		if tracer == nil {
			tracer = telemetry.Tracer()
		}
		ctx, span := tracer.Start(c.Context(), "procedure "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("rpc.method", c.Path()),
				attribute.String("client.address", c.IP()),
			),
		)
		start := cfg.now()

		defer func() {
			rec := recover()
			duration := cfg.now().Sub(start)
			attrs := []slog.Attr{
				slog.String("path", c.Path()),
				slog.Int64("duration_ms", duration.Milliseconds()),
				slog.String("ip", c.IP()),
			}
			if id := c.UserID(); id != "" {
				attrs = append(attrs, slog.String("user_id", id))
				span.SetAttributes(attribute.String("enduser.id", id))
			}

			// Record the panic and let it keep unwinding to whoever recovers it.
			if rec != nil {
				msg := fmt.Sprint(rec)
				attrs = append(attrs,
					slog.Int("status", http.StatusInternalServerError),
					slog.String("panic", msg),
				)
				span.SetAttributes(attribute.Int("rpc.status", http.StatusInternalServerError))
				span.SetStatus(codes.Error, "panic: "+msg)
				span.End()
				log.LogAttrs(ctx, slog.LevelError, "procedure call panicked", attrs...)
				panic(rec)
			}

			if err == nil {
				span.SetStatus(codes.Ok, "")
				span.End()
				log.LogAttrs(ctx, slog.LevelInfo, "procedure call", attrs...)
				return
			}

			level, status := slog.LevelError, http.StatusInternalServerError
			if ae := internal.AsAppError(err); ae != nil {
				status = ae.StatusCode()
				attrs = append(attrs, slog.String("kind", string(ae.Kind)))
				if status < http.StatusInternalServerError {
					level = slog.LevelWarn
				}
			}
			attrs = append(attrs,
				slog.Int("status", status),
				slog.String("error", err.Error()),
			)

			span.RecordError(err)
			span.SetAttributes(attribute.Int("rpc.status", status))
			span.SetStatus(codes.Error, err.Error())
			span.End()
			log.LogAttrs(ctx, level, "procedure call failed", attrs...)
		}()

		return next(c.WithContext(ctx))
	})
}
