// Response writer wrapping and bucket key construction for limited routes.

package ratelimit

import (
	"net/http"
	"strconv"
)

// limitedResponseWriter delays its first write so the X-RateLimit headers
// land on every response that went through a tier, not just the 429s.
type limitedResponseWriter struct {
	http.ResponseWriter
	result Result
	sent   bool
}

// NewResponseWriter wraps w so rate limit headers for result are set before
// the first byte of the response goes out.
func NewResponseWriter(w http.ResponseWriter, result Result) http.ResponseWriter {
	return &limitedResponseWriter{ResponseWriter: w, result: result}
}

func (lw *limitedResponseWriter) setHeaders() {
	if lw.sent {
		return
	}
	lw.sent = true
	h := lw.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(lw.result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(lw.result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(lw.result.ResetAt.Unix(), 10))
	// Retry-After accompanies denied requests only.
	if !lw.result.Allowed {
		h.Set("Retry-After", strconv.Itoa(int(lw.result.RetryAfter.Seconds())))
	}
}

func (lw *limitedResponseWriter) WriteHeader(statusCode int) {
	lw.setHeaders()
	lw.ResponseWriter.WriteHeader(statusCode)
}

func (lw *limitedResponseWriter) Write(b []byte) (int, error) {
	lw.setHeaders()
	return lw.ResponseWriter.Write(b)
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (lw *limitedResponseWriter) Unwrap() http.ResponseWriter {
	return lw.ResponseWriter
}

// BuildKey derives the bucket key for a request: the tier scope's prefix,
// the client identifier (IP or user ID), and the tier name.
func BuildKey(scope Scope, identifier, tierName string) string {
	return scope.keyPrefix() + ":" + identifier + ":" + tierName
}
