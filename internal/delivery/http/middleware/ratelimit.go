package middleware

import (
	"net/http"
	"time"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

// RateLimit returns a wrapper gating the handler behind the sliding
// window limiter for the given action. The limiter is keyed by the
// authenticated user and the event in the path, so it must run after
// RequireAuth. Denials carry the reset instant.
func RateLimit(limiter domain.RateLimiter, action string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
				return
			}
			decision := limiter.Allow(userID, action, r.PathValue("eventID"))
			if !decision.Allowed {
				helpers.WriteJSONErrorDetail(w, http.StatusTooManyRequests, &helpers.APIError{
					Code:    helpers.ErrCodeRateLimited,
					Message: "too many requests",
					ResetAt: decision.ResetAt.Format(time.RFC3339),
				})
				return
			}
			next(w, r)
		}
	}
}
