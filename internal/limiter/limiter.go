// Package limiter defines interfaces and implementations for throttling
// authentication endpoints.
package limiter

import (
	"context"
	"time"
)

// Scopes keep login and registration windows independent.
const (
	ScopeLogin    = "login"
	ScopeRegister = "register"
)

// Rule bounds attempts per source IP over a sliding window.
type Rule struct {
	Window      time.Duration
	MaxAttempts int
}

// Limiter throttles attempts per (scope, source IP).
type Limiter interface {
	// Attempt records one attempt and reports whether it is allowed,
	// with a retry-after duration when it is not.
	Attempt(ctx context.Context, scope string, ip string) (bool, time.Duration, error)
}
