package shield

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/slidekit/idgen"
	"github.com/hazyhaar/slidekit/kit"
)

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(DefaultHeaders())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestMaxBody(t *testing.T) {
	h := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0"}`)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("small body: status %d", rec.Code)
	}
}

func TestMaxBody_Disabled(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	if got := MaxBody(0)(next); got == nil {
		t.Fatal("nil handler")
	}
}

func TestRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var transport string
	var reqLogger *slog.Logger
	r := chi.NewRouter()
	r.Use(RequestID(logger, idgen.Sequence("req_")))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		transport = kit.GetTransport(r.Context())
		reqLogger = GetLogger(r.Context())
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := rec.Header().Get("X-Request-ID"); got != "req_1" {
		t.Fatalf("X-Request-ID = %q", got)
	}
	if transport != "http" {
		t.Fatalf("transport = %q", transport)
	}
	if reqLogger == slog.Default() {
		t.Fatal("expected per-request logger")
	}
	if !strings.Contains(buf.String(), `"request_id":"req_1"`) {
		t.Fatalf("log = %s", buf.String())
	}
}

func TestGetLogger_Default(t *testing.T) {
	if GetLogger(context.Background()) != slog.Default() {
		t.Fatal("expected slog.Default()")
	}
}
