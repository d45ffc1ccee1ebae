package domain

import "time"

// RateLimitRule is a request budget over a trailing window.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
}

// RateLimitDecision is the outcome of a rate-limit check. ResetAt is the
// instant the oldest counted request leaves the window.
type RateLimitDecision struct {
	Allowed bool      `json:"allowed"`
	ResetAt time.Time `json:"reset_at"`
}

// RateLimiter gates writes per (user, action[, resource]). Allowed calls
// consume budget; denied calls do not.
type RateLimiter interface {
	Allow(userID, action, resource string) RateLimitDecision
}
