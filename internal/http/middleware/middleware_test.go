package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"futsal-sim-service/internal/testutil"
)

func TestLoggingMiddlewarePropagatesRequestID(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()

	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/games", nil)
	req.Header.Set("X-Request-ID", "req-abc_123")
	rec := httptest.NewRecorder()
	LoggingMiddleware(logger, nil, next).ServeHTTP(rec, req)

	if seenID != "req-abc_123" {
		t.Fatalf("context id = %q", seenID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-abc_123" {
		t.Fatalf("header id = %q", got)
	}
	if !strings.Contains(buf.String(), "status_code=418") {
		t.Fatalf("log missing status: %s", buf.String())
	}
}

func TestLoggingMiddlewareReplacesBadRequestID(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/games", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces\n")
	rec := httptest.NewRecorder()
	LoggingMiddleware(logger, nil, next).ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	if got == "" || !requestIDPattern.MatchString(got) {
		t.Fatalf("generated id = %q", got)
	}
}

func TestRequestIDFromContextDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := RequestIDFromContext(req.Context()); id != "" {
		t.Fatalf("id = %q, want empty", id)
	}
}

func TestNormalizePathBoundsCardinality(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/health", "/health"},
		{"/games", "/games"},
		{"/games/abc-123", "/games/:id"},
		{"/games/abc-123/join", "/games/:id/join"},
		{"/games/abc-123/players/p9/move", "/games/:id/players/:pid/move"},
		{"/games/abc-123/ws", "/games/:id/ws"},
	}
	for _, tc := range cases {
		if got := normalizePath(tc.in); got != tc.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
