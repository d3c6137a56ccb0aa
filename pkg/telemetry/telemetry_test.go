package telemetry_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/pkg/telemetry"
)

func TestInitTracer_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := telemetry.InitTracer(telemetry.Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestNewProvider_ExportsSpans(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tp, err := telemetry.NewProvider(telemetry.Config{Output: &buf, ServiceName: "authservice"})
	require.NoError(t, err)

	_, span := tp.Tracer(telemetry.TracerName).Start(context.Background(), "procedure register")
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "procedure register")
	assert.Contains(t, buf.String(), "authservice")
}

func TestMiddlewareAndTransport(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(upstream.Close)

	h := telemetry.Middleware("test")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	client := &http.Client{Transport: telemetry.Transport(nil)}
	resp, err := client.Get(upstream.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
