package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across services. Controllers map these onto
// HTTP status codes; everything else is treated as an infrastructure
// failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")

	// ErrAccessDenied is returned when a private event has no accepted
	// invitation for the actor.
	ErrAccessDenied = errors.New("access denied")

	// Approval gate denials. The three are distinct so callers can render
	// the right state ("request approval" vs "waiting" vs "rejected").
	ErrApprovalRequired = errors.New("approval required")
	ErrApprovalPending  = errors.New("approval pending")
	ErrApprovalRejected = errors.New("approval rejected")

	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidState     = errors.New("invalid state")

	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable is surfaced after storage retries are exhausted.
	ErrUnavailable = errors.New("service unavailable")
)

// RateLimitedError carries the instant at which the caller's window frees up.
type RateLimitedError struct {
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.ResetAt.Format(time.RFC3339))
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }
