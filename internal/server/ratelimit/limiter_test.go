package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	t.Run("allows within burst then denies", func(t *testing.T) {
		l := NewLimiter(5, time.Minute, 3)
		defer l.Close()

		for i := range 3 {
			r := l.Allow("key")
			if !r.Allowed {
				t.Fatalf("request %d should be allowed", i)
			}
		}
		r := l.Allow("key")
		if r.Allowed {
			t.Error("request beyond burst should be denied")
		}
		if r.RetryAfter <= 0 {
			t.Errorf("RetryAfter = %v, want > 0", r.RetryAfter)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewLimiter(5, time.Minute, 1)
		defer l.Close()

		if !l.Allow("a").Allowed {
			t.Fatal("first request on key a should be allowed")
		}
		if l.Allow("a").Allowed {
			t.Fatal("second request on key a should be denied")
		}
		if !l.Allow("b").Allowed {
			t.Error("key b should have its own bucket")
		}
	})

	t.Run("result reports limit per window", func(t *testing.T) {
		l := NewLimiter(60, time.Minute, 10)
		defer l.Close()

		r := l.Allow("key")
		if r.Limit != 60 {
			t.Errorf("Limit = %d, want 60", r.Limit)
		}
		if r.Remaining < 0 {
			t.Errorf("Remaining = %d", r.Remaining)
		}
	})
}
