package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{Method: req.Method, Path: req.URL.RequestURI(), Body: string(body)})
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func newBackend(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec.add(req)
		if h, ok := routes[req.Method+" "+req.URL.Path]; ok {
			h(w)
			return
		}
		http.NotFound(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func status(code int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}
}

func newResolver(srv *httptest.Server) *Resolver {
	return New(NewHTTPTransport(HTTPConfig{BaseURL: srv.URL}, srv.Client()), nil)
}

func TestResolve_FallsThroughToThirdCandidate(t *testing.T) {
	srv, rec := newBackend(t, map[string]func(w http.ResponseWriter){
		"PATCH /a":  status(http.StatusNotFound, `{"message":"no route"}`),
		"POST /b":   status(http.StatusMethodNotAllowed, ``),
		"POST /c":   status(http.StatusOK, `{"ok":true}`),
		"DELETE /c": status(http.StatusOK, `{}`),
	})

	resp, err := newResolver(srv).Resolve(context.Background(),
		Patch("/a", map[string]interface{}{"x": 1}),
		Post("/b", nil),
		Post("/c", nil),
	)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "/c", resp.Candidate.URL)

	requests := rec.all()
	require.Len(t, requests, 3)
	assert.Equal(t, "PATCH", requests[0].Method)
	assert.JSONEq(t, `{"x":1}`, requests[0].Body)
	assert.Equal(t, "/b", requests[1].Path)
	assert.Equal(t, "/c", requests[2].Path)
}

func TestResolve_NonFallbackStatusAborts(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"bad request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"conflict", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newBackend(t, map[string]func(w http.ResponseWriter){
				"POST /a": status(tt.status, `{"error":"nope"}`),
				"POST /b": status(http.StatusOK, `{}`),
			})

			_, err := newResolver(srv).Resolve(context.Background(), Post("/a", nil), Post("/b", nil))
			require.Error(t, err)

			var rerr *Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.status, rerr.Status)
			assert.Equal(t, "nope", rerr.Message)
			assert.Len(t, rec.all(), 1)
		})
	}
}

func TestResolve_ExhaustionReturnsLastError(t *testing.T) {
	srv, rec := newBackend(t, map[string]func(w http.ResponseWriter){
		"GET /a": status(http.StatusNotFound, `{}`),
		"GET /b": status(http.StatusNotImplemented, `{"message":"later"}`),
	})

	_, err := newResolver(srv).Resolve(context.Background(), Get("/a"), Get("/b"))
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusNotImplemented, rerr.Status)
	assert.Equal(t, "later", rerr.Message)
	assert.Contains(t, rerr.URL, "/b")
	assert.Len(t, rec.all(), 2)
}

func TestResolve_NoCandidates(t *testing.T) {
	r := New(TransportFunc(func(ctx context.Context, c Candidate) (*Response, error) {
		t.Fatal("transport must not be called")
		return nil, nil
	}), nil)

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestResolve_NetworkErrorAborts(t *testing.T) {
	calls := 0
	r := New(TransportFunc(func(ctx context.Context, c Candidate) (*Response, error) {
		calls++
		return nil, &Error{Method: c.Method, URL: c.URL, Cause: errors.New("connection refused")}
	}), nil)

	_, err := r.Resolve(context.Background(), Get("/a"), Get("/b"))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, StatusOf(err))
	assert.True(t, IsNetworkError(err))
}

func TestHTTPTransport_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = req.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{
		BaseURL:   srv.URL + "/",
		AuthToken: "secret",
		UserAgent: "leadflow-test",
		Headers:   map[string]string{"X-Tenant": "acme"},
	}, srv.Client())

	resp, err := tr.Do(context.Background(), Post("automations", map[string]string{"name": "x"}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.Equal(t, "leadflow-test", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "acme", got.Get("X-Tenant"))
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare array", `[1,2]`, `[1,2]`},
		{"data envelope", `{"data":[1,2]}`, `[1,2]`},
		{"items envelope", `{"items":[1,2]}`, `[1,2]`},
		{"results envelope", `{"results":[1,2]}`, `[1,2]`},
		{"empty object", `{}`, `[]`},
		{"data is object", `{"data":{"a":1}}`, `[]`},
		{"null", `null`, `[]`},
		{"not json", `oops`, `[]`},
		{"empty body", ``, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(NormalizeList([]byte(tt.body)))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestUnwrapObject(t *testing.T) {
	assert.JSONEq(t, `{"id":1}`, string(UnwrapObject([]byte(`{"data":{"id":1}}`))))
	assert.JSONEq(t, `{"id":1}`, string(UnwrapObject([]byte(`{"id":1}`))))
	assert.JSONEq(t, `{"data":[1]}`, string(UnwrapObject([]byte(`{"data":[1]}`))))
}

type logEntry struct {
	level string
	msg   string
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) DebugwCtx(_ context.Context, msg string, _ ...interface{}) {
	l.entries = append(l.entries, logEntry{"debug", msg})
}

func (l *recordingLogger) InfowCtx(_ context.Context, msg string, _ ...interface{}) {
	l.entries = append(l.entries, logEntry{"info", msg})
}

func (l *recordingLogger) WarnwCtx(_ context.Context, msg string, _ ...interface{}) {
	l.entries = append(l.entries, logEntry{"warn", msg})
}

func (l *recordingLogger) levels() []string {
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.level)
	}
	return out
}

func TestResolve_LogLevels(t *testing.T) {
	srv, _ := newBackend(t, map[string]func(w http.ResponseWriter){
		"GET /a":  status(http.StatusNotFound, `{}`),
		"GET /b":  status(http.StatusOK, `{}`),
		"GET /c":  status(http.StatusNotFound, `{}`),
		"POST /d": status(http.StatusBadRequest, `{}`),
	})
	transport := NewHTTPTransport(HTTPConfig{BaseURL: srv.URL}, srv.Client())

	t.Run("fallthrough then success", func(t *testing.T) {
		log := &recordingLogger{}
		_, err := New(transport, log).Resolve(context.Background(), Get("/a"), Get("/b"))
		require.NoError(t, err)
		assert.Equal(t, []string{"debug", "info", "debug"}, log.levels())
	})

	t.Run("exhausted", func(t *testing.T) {
		log := &recordingLogger{}
		_, err := New(transport, log).Resolve(context.Background(), Get("/a"), Get("/c"))
		require.Error(t, err)
		assert.Equal(t, []string{"debug", "info", "debug", "info", "warn"}, log.levels())
		assert.Equal(t, "All candidate requests exhausted", log.entries[4].msg)
	})

	t.Run("aborted", func(t *testing.T) {
		log := &recordingLogger{}
		_, err := New(transport, log).Resolve(context.Background(), Post("/d", nil), Get("/b"))
		require.Error(t, err)
		assert.Equal(t, []string{"debug", "warn"}, log.levels())
	})
}
