// Package ratelimit throttles login attempts, public form traffic, and the
// admin API with per-key token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result is the outcome of a single rate limit check, carrying everything
// needed to fill the X-RateLimit response headers.
type Result struct {
	Allowed    bool
	Limit      int           // requests per window
	Remaining  int           // requests left in the current window
	ResetAt    time.Time     // when the bucket refills completely
	RetryAfter time.Duration // wait before retrying, 0 when allowed
}

// Limiter tracks one token bucket per key. Keys are built by BuildKey from
// the tier scope and client identifier, so distinct clients never share a
// bucket.
type Limiter struct {
	mu      sync.RWMutex
	entries map[string]*entry
	rate    rate.Limit
	burst   int
	window  time.Duration
	stop    chan struct{}
}

type entry struct {
	limiter *rate.Limiter
	touched time.Time
}

// NewLimiter allows requests per window with the given burst capacity.
// Close must be called to stop the background sweeper.
func NewLimiter(requests int, window time.Duration, burst int) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   burst,
		window:  window,
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow consumes one token from key's bucket, creating the bucket on first
// sight.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = e
	}
	e.touched = time.Now()
	l.mu.Unlock()

	// Reserve rather than Allow to learn the delay, then give the token
	// back when the request is denied.
	now := time.Now()
	res := e.limiter.ReserveN(now, 1)
	allowed := res.OK() && res.Delay() == 0
	if !allowed && res.OK() {
		res.Cancel()
	}

	tokens := e.limiter.Tokens()
	remaining := max(int(tokens), 0)

	refill := time.Duration((float64(l.burst) - tokens) / float64(l.rate) * float64(time.Second))

	var retryAfter time.Duration
	if !allowed {
		retryAfter = max(time.Duration(float64(time.Second)/float64(l.rate)), time.Second)
	}

	return Result{
		Allowed:    allowed,
		Limit:      int(float64(l.rate) * l.window.Seconds()),
		Remaining:  remaining,
		ResetAt:    now.Add(refill),
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets that are idle and back at full capacity. A bucket
// still refilling is kept so a burst cannot be reset by waiting out the
// sweep interval.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	idle := time.Now().Add(-10 * time.Minute)
	for key, e := range l.entries {
		if e.touched.Before(idle) && e.limiter.Tokens() >= float64(l.burst) {
			delete(l.entries, key)
		}
	}
}

// Close stops the background sweeper.
func (l *Limiter) Close() {
	close(l.stop)
}
