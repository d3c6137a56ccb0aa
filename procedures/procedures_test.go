package procedures_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate"
	"github.com/dmitrymomot/rpcgate/pkg/logger"
	"github.com/dmitrymomot/rpcgate/pkg/ratelimit"
	"github.com/dmitrymomot/rpcgate/procedures"
)

func newServer(t *testing.T, procs ...func(*rpcgate.Stack) *rpcgate.Procedure) *httptest.Server {
	t.Helper()

	store := ratelimit.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	stack := rpcgate.NewStack(store)
	list := make([]*rpcgate.Procedure, 0, len(procs))
	for _, p := range procs {
		list = append(list, p(stack))
	}
	app := rpcgate.New(rpcgate.WithProcedures(list...))

	srv := httptest.NewServer(app.Router())
	t.Cleanup(srv.Close)
	return srv
}

func register(stack *rpcgate.Stack) *rpcgate.Procedure {
	return procedures.Register(stack, logger.NewNope())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 30, 45, 123456789, time.FixedZone("CET", 3600))
	srv := newServer(t, func(s *rpcgate.Stack) *rpcgate.Procedure {
		return procedures.HealthAt(s, func() time.Time { return fixed })
	})

	resp, err := http.Get(srv.URL + "/trpc/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body procedures.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "2026-03-01T11:30:45.123Z", body.Timestamp)
}

func TestHealth_RealClock(t *testing.T) {
	t.Parallel()

	srv := newServer(t, procedures.Health)

	resp, err := http.Get(srv.URL + "/trpc/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body procedures.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	ts, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
	assert.True(t, strings.HasSuffix(body.Timestamp, "Z"))
}

func TestRegister(t *testing.T) {
	t.Parallel()

	post := func(t *testing.T, srv *httptest.Server, body string) (*http.Response, rpcgate.ErrorResponse) {
		t.Helper()
		resp, err := http.Post(srv.URL+"/trpc/register", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		var out rpcgate.ErrorResponse
		if resp.StatusCode != http.StatusNoContent {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		}
		return resp, out
	}

	t.Run("valid input", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, register)
		resp, _ := post(t, srv, `{"email":"Jane@Example.com","password":"secret123","firstName":"Jane","lastName":"Doe"}`)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("invalid input lists every failed field", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, register)
		resp, out := post(t, srv, `{"email":"nope","password":"short","firstName":"","lastName":"Doe","phone":"abc"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "error", out.Status)
		assert.Equal(t, "Invalid input data", out.Message)

		details, ok := out.Details.([]any)
		require.True(t, ok, "details: %#v", out.Details)
		var fields []string
		for _, d := range details {
			fields = append(fields, d.(map[string]any)["field"].(string))
		}
		assert.ElementsMatch(t, []string{"email", "password", "firstName", "phone"}, fields)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, register)
		resp, out := post(t, srv, `{"email":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid input data", out.Message)
	})

	t.Run("query method is rejected", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, register)
		resp, err := http.Get(srv.URL + "/trpc/register")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("sixth attempt for the same email is rate limited", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, register)
		body := `{"email":"jane@example.com","password":"secret123","firstName":"Jane","lastName":"Doe"}`
		for range 5 {
			resp, _ := post(t, srv, body)
			require.Equal(t, http.StatusNoContent, resp.StatusCode)
		}

		resp, out := post(t, srv, strings.Replace(body, "jane@", "JANE@", 1))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "Too many requests, please try again later", out.Message)

		resp, _ = post(t, srv, strings.Replace(body, "jane@", "john@", 1))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
