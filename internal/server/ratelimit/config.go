// Defines rate limit tiers and routing rules.

package ratelimit

import (
	"strings"
	"time"

	"github.com/realsalbednarz/notion-form-sub000/internal/storage"
)

// Scope defines how rate limit keys are determined.
type Scope int

const (
	// ScopeIP uses client IP address as the rate limit key.
	ScopeIP Scope = iota
	// ScopeUser uses authenticated user ID as the rate limit key.
	ScopeUser
)

// keyPrefix is the bucket key prefix for the scope.
func (s Scope) keyPrefix() string {
	if s == ScopeUser {
		return "user"
	}
	return "ip"
}

// Tier defines a rate limit tier with its limiter and scope.
type Tier struct {
	Name    string
	Limiter *Limiter
	Scope   Scope
}

// Limiters holds rate limiters for different tiers:
//   - Auth: login attempts, per client IP
//   - Submit: public form writes (submit and row edit), per client IP
//   - ReadAuth: all admin API traffic, per user
//   - ReadUnauth: public form reads, per client IP
type Limiters struct {
	Auth       Tier
	Submit     Tier
	ReadAuth   Tier
	ReadUnauth Tier
}

// NewLimiters creates Limiters from the configured per-minute rates.
// A rate of 0 disables that tier.
func NewLimiters(rl storage.RateLimits) *Limiters {
	return &Limiters{
		Auth: Tier{
			Name:    "auth",
			Limiter: newTierLimiter(rl.AuthRatePerMin, rl.AuthRatePerMin),
			Scope:   ScopeIP,
		},
		Submit: Tier{
			Name:    "submit",
			Limiter: newTierLimiter(rl.SubmitRatePerMin, burstFor(rl.SubmitRatePerMin)),
			Scope:   ScopeIP,
		},
		ReadAuth: Tier{
			Name:    "read",
			Limiter: newTierLimiter(rl.ReadAuthRatePerMin, burstFor(rl.ReadAuthRatePerMin)),
			Scope:   ScopeUser,
		},
		ReadUnauth: Tier{
			Name:    "read",
			Limiter: newTierLimiter(rl.ReadUnauthRatePerMin, burstFor(rl.ReadUnauthRatePerMin)),
			Scope:   ScopeIP,
		},
	}
}

func newTierLimiter(perMin, burst int) *Limiter {
	if perMin <= 0 {
		return nil
	}
	return NewLimiter(perMin, time.Minute, burst)
}

// burstFor allows short spikes of a sixth of the per-minute rate, at least 5.
func burstFor(perMin int) int {
	return max(perMin/6, 5)
}

// MatchUnauth returns the tier for unauthenticated requests.
// Returns nil for paths that should not be rate limited.
func (l *Limiters) MatchUnauth(method, path string) *Tier {
	// Skip health check
	if path == "/api/health" {
		return nil
	}

	if method == "POST" && path == "/api/auth/login" {
		return tierOrNil(&l.Auth)
	}

	// Public form writes
	if (method == "POST" || method == "PATCH") && strings.HasPrefix(path, "/f/") {
		return tierOrNil(&l.Submit)
	}

	// All other unauthenticated GETs
	if method == "GET" {
		return tierOrNil(&l.ReadUnauth)
	}

	return nil
}

// MatchAuth returns the tier for authenticated requests.
// Returns nil for paths that should not be rate limited.
func (l *Limiters) MatchAuth(method, path string) *Tier {
	// Skip health check
	if path == "/api/health" {
		return nil
	}
	return tierOrNil(&l.ReadAuth)
}

// tierOrNil hides tiers whose limiter is disabled.
func tierOrNil(t *Tier) *Tier {
	if t.Limiter == nil {
		return nil
	}
	return t
}

// Close stops the background sweepers of all tiers.
func (l *Limiters) Close() {
	for _, t := range []*Tier{&l.Auth, &l.Submit, &l.ReadAuth, &l.ReadUnauth} {
		if t.Limiter != nil {
			t.Limiter.Close()
		}
	}
}
