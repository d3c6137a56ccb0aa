package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by rpcgate spans.
const TracerName = "github.com/dmitrymomot/rpcgate"

// ErrInitTracer wraps exporter and resource setup failures.
var ErrInitTracer = errors.New("telemetry: failed to initialize tracer")

// Config controls span export.
type Config struct {
	Output      io.Writer `koanf:"-"`
	ServiceName string    `koanf:"service_name"`
	Enabled     bool      `koanf:"enabled"`
	Pretty      bool      `koanf:"pretty"`
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// InitTracer installs a global tracer provider that writes spans to
// cfg.Output (stdout by default). When tracing is disabled it leaves the
// global no-op provider in place and returns a no-op shutdown.
func InitTracer(cfg Config, log *slog.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	tp, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing enabled", slog.String("service", cfg.ServiceName))
	return tp.Shutdown, nil
}

// NewProvider builds a tracer provider exporting to cfg.Output without
// installing it globally.
func NewProvider(cfg Config) (*sdktrace.TracerProvider, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
	if cfg.Pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, errors.Join(ErrInitTracer, err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, errors.Join(ErrInitTracer, err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// Tracer returns the rpcgate tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Middleware opens a server span per HTTP request and picks up trace context
// sent by upstream services.
func Middleware(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation)
	}
}

// Transport wraps base so outgoing requests carry the current trace context.
// A nil base uses http.DefaultTransport.
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base)
}
