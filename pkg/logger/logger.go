package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config describes a service logger.
type Config struct {
	Output    io.Writer    `koanf:"-"`
	Level     string       `koanf:"level"`
	Format    string       `koanf:"format"`
	Component string       `koanf:"component"`
	Sentry    SentryConfig `koanf:"sentry"`
}

// SentryConfig holds Sentry integration settings.
// An empty DSN disables the Sentry sink.
type SentryConfig struct {
	DSN         string `koanf:"dsn"`
	Environment string `koanf:"environment"`
	// MinLevel is the lowest level stored as a Sentry log entry ("warn" or "error").
	MinLevel string `koanf:"min_level"`
}

// New creates a logger from cfg. Context extractors run on every record for
// all destinations.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	hopts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var base slog.Handler
	if strings.EqualFold(cfg.Format, FormatText) {
		base = slog.NewTextHandler(out, hopts)
	} else {
		base = slog.NewJSONHandler(out, hopts)
	}

	handler := base
	if sh, err := newSentryHandler(cfg.Sentry); err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
	} else if sh != nil {
		handler = newMultiHandler(base, sh)
	}

	log := slog.New(NewLogHandlerDecorator(handler, extractors...))
	if cfg.Component != "" {
		log = log.With(slog.String("component", cfg.Component))
	}
	return log
}

// NewNope creates a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts debug|info|warn|error into a slog level.
// Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	env := cfg.Environment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		return nil, err
	}

	// Errors become Sentry issues; warnings are kept as searchable logs.
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if ParseLevel(cfg.MinLevel) == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}
	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background()), nil
}
