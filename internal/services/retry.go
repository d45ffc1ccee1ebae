package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatherly/internal/domain"
)

const (
	writeRetryAttempts = 3
	writeRetryBaseWait = 50 * time.Millisecond
)

// domainSentinels are expected caller-recoverable conditions; retrying
// them is pointless.
var domainSentinels = []error{
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrUnauthorized,
	domain.ErrInvalidInput,
	domain.ErrAccessDenied,
	domain.ErrApprovalRequired,
	domain.ErrApprovalPending,
	domain.ErrApprovalRejected,
	domain.ErrCapacityExceeded,
	domain.ErrAlreadyExists,
	domain.ErrInvalidState,
	domain.ErrRateLimited,
}

func isDomainError(err error) bool {
	for _, sentinel := range domainSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// withWriteRetry runs fn, retrying infrastructure failures with
// exponential backoff. Domain errors pass through untouched; once
// attempts are exhausted the failure surfaces as ErrUnavailable.
func withWriteRetry(ctx context.Context, fn func() error) error {
	var err error
	wait := writeRetryBaseWait
	for attempt := 0; attempt < writeRetryAttempts; attempt++ {
		if err = fn(); err == nil || isDomainError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
}
