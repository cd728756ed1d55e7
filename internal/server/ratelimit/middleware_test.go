package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestResponseWriterHeaders(t *testing.T) {
	t.Run("headers injected before body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec, Result{
			Allowed:   true,
			Limit:     60,
			Remaining: 42,
			ResetAt:   time.Unix(1700000000, 0),
		})
		if _, err := rw.Write([]byte(`{"ok":true}`)); err != nil {
			t.Fatal(err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "60" {
			t.Errorf("X-RateLimit-Limit = %q", got)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != "42" {
			t.Errorf("X-RateLimit-Remaining = %q", got)
		}
		if got := rec.Header().Get("X-RateLimit-Reset"); got != "1700000000" {
			t.Errorf("X-RateLimit-Reset = %q", got)
		}
		if got := rec.Header().Get("Retry-After"); got != "" {
			t.Errorf("Retry-After should be absent on allowed requests, got %q", got)
		}
	})

	t.Run("retry-after on denied requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec, Result{Allowed: false, RetryAfter: 12 * time.Second})
		rw.WriteHeader(429)
		if got := rec.Header().Get("Retry-After"); got != "12" {
			t.Errorf("Retry-After = %q", got)
		}
	})
}

func TestBuildKey(t *testing.T) {
	if got := BuildKey(ScopeIP, "203.0.113.7", "auth"); got != "ip:203.0.113.7:auth" {
		t.Errorf("BuildKey = %q", got)
	}
	if got := BuildKey(ScopeUser, "42", "read"); got != "user:42:read" {
		t.Errorf("BuildKey = %q", got)
	}
}
