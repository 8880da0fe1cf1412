package adapthttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := &Server{log: zerolog.New(&buf)}
	// Create a dummy handler
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	handler := s.loggingMiddleware(nextHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "GET") || !strings.Contains(logOutput, "/test-path") || !strings.Contains(logOutput, "418") {
		t.Errorf("Log output missing expected fields. Got: %s", logOutput)
	}
}

func TestLoggingMiddleware_KeepsRequestID(t *testing.T) {
	s := &Server{log: zerolog.Nop()}
	handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}
}
