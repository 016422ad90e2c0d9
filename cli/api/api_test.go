package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, storeOptions *StoreOptions, logs io.Writer) *httptest.Server {
	t.Helper()
	handler, oapi, err := NewRouter(&RouterOptions{EndpointsPrefix: "/api"}, storeOptions,
		"Contacts API", "test", "abc", "now", slog.New(slog.NewJSONHandler(logs, nil)))
	require.NoError(t, err)
	require.NotNil(t, oapi)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// syncBuffer is a [bytes.Buffer] safe for the server and the test to share.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// do sends a request and reads the whole response so the connection is
// reused and requests are served one after the other.
func do(t *testing.T, srv *httptest.Server, method, path string, body any, headers ...string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestNewRouterDatafile(t *testing.T) {
	datafile := filepath.Join(t.TempDir(), "contacts.json")
	var logs syncBuffer
	srv := newTestServer(t, &StoreOptions{Datafile: datafile, IDScheme: "sequence"}, &logs)

	resp, body := do(t, srv, http.MethodPost, "/api/contacts", map[string]string{"name": "A", "email": "a@x.com", "phone": "1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `{"id":"1","name":"A","email":"a@x.com","phone":"1"}`, body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	b, err := os.ReadFile(datafile)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","name":"A","email":"a@x.com","phone":"1"}]`, string(b))

	resp, _ = do(t, srv, http.MethodGet, "/api/contacts/2", nil, "X-Request-Id", "req-42")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-Id"))
	assert.Contains(t, logs.String(), `"x-request-id":"req-42"`)
	assert.Contains(t, logs.String(), `"level":"WARN","msg":"request failed"`)

	for range 3 {
		resp, _ = do(t, srv, http.MethodGet, "/readiness", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ = do(t, srv, http.MethodGet, "/liveness", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `build_info{goversion="`)
	assert.Contains(t, body, `http_requests_total{method="POST",path="/api/contacts",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/contacts/{id}",status="404"} 1`)
	assert.Contains(t, body, `store_operations_total{op="load"} 2`)
	assert.Contains(t, body, `store_operations_total{op="save"} 1`)
}

func TestNewRouterInmem(t *testing.T) {
	srv := newTestServer(t, &StoreOptions{IDScheme: "uuid"}, io.Discard)

	resp, body := do(t, srv, http.MethodPost, "/api/contacts", map[string]string{"name": "A"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var created struct{ ID string }
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Len(t, created.ID, 22)

	resp, _ = do(t, srv, http.MethodDelete, "/api/contacts/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = do(t, srv, http.MethodGet, "/api/contacts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
}

func TestNewRouterStrictCorrupt(t *testing.T) {
	datafile := filepath.Join(t.TempDir(), "contacts.json")
	require.NoError(t, os.WriteFile(datafile, []byte("{not json"), 0o600))

	srv := newTestServer(t, &StoreOptions{Datafile: datafile, Strict: true}, io.Discard)
	resp, _ := do(t, srv, http.MethodGet, "/readiness", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp, body := do(t, srv, http.MethodGet, "/api/contacts", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "Internal server error")

	lenient := newTestServer(t, &StoreOptions{Datafile: datafile}, io.Discard)
	resp, body = do(t, lenient, http.MethodGet, "/api/contacts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
}

func TestNewRouterIDScheme(t *testing.T) {
	_, _, err := NewRouter(&RouterOptions{}, &StoreOptions{IDScheme: "random"},
		"", "", "", "", slog.New(slog.DiscardHandler))
	require.Error(t, err)
}

func TestNewServer(t *testing.T) {
	srv := NewServer(&ServerOptions{Host: "localhost", Port: "8080", ReadHeaderTimeout: time.Second},
		http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	assert.Equal(t, "localhost:8080", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadHeaderTimeout)
}
