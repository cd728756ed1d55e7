package reqctx

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/maruel/ksid"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"ipv4 with port", "203.0.113.7:4312", nil, "203.0.113.7"},
		{"ipv6 with port", "[::1]:8080", nil, "::1"},
		{"ipv6 without port", "[2001:db8::1]", nil, "2001:db8::1"},
		{"x-forwarded-for single", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.9"}, "198.51.100.9"},
		{"x-forwarded-for chain", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.2"}, "198.51.100.9"},
		{"x-real-ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.10"}, "198.51.100.10"},
		{"forwarded-for wins over real-ip", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.9", "X-Real-IP": "198.51.100.10"}, "198.51.100.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if ClientIP(ctx) != "" || UserAgent(ctx) != "" || CountryCode(ctx) != "" {
		t.Error("empty context should yield zero values")
	}
	if !SessionID(ctx).IsZero() {
		t.Error("empty context should yield zero session ID")
	}

	sid := ksid.NewID()
	ctx = WithClientIP(ctx, "203.0.113.7")
	ctx = WithUserAgent(ctx, "curl/8.0")
	ctx = WithCountryCode(ctx, "CH")
	ctx = WithSessionID(ctx, sid)

	if got := ClientIP(ctx); got != "203.0.113.7" {
		t.Errorf("ClientIP = %q", got)
	}
	if got := UserAgent(ctx); got != "curl/8.0" {
		t.Errorf("UserAgent = %q", got)
	}
	if got := CountryCode(ctx); got != "CH" {
		t.Errorf("CountryCode = %q", got)
	}
	if got := SessionID(ctx); got != sid {
		t.Errorf("SessionID = %s", got)
	}
}
