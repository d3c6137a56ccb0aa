package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/rpcgate/internal"
)

func call(c internal.Context, h internal.HandlerFunc, stages ...internal.Stage) (any, error) {
	return internal.NewPipeline(h, stages...).Execute(c)
}

func anonymous(path string) internal.Context {
	return internal.NewContext(context.Background(), path, "203.0.113.7", "test-agent", nil)
}

func authenticated(path string, role internal.Role) internal.Context {
	return internal.NewContext(context.Background(), path, "203.0.113.7", "test-agent", &internal.User{
		ID:     "user-123",
		Email:  "user@example.com",
		Role:   role,
		Status: internal.StatusActive,
	})
}

func ok(internal.Context) (any, error) {
	return map[string]string{"status": "ok"}, nil
}

// syncBuffer guards a bytes.Buffer shared with a slog handler.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) records() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(b.buf.Bytes()))
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			break
		}
		out = append(out, rec)
	}
	return out
}

func newTestLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func traceSpanValid(c internal.Context) bool {
	return trace.SpanContextFromContext(c.Context()).IsValid()
}
