package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// writeServiceError maps domain sentinel errors onto the HTTP envelope.
// Anything unrecognized is logged and surfaced as a 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event organizer can do this")
	case errors.Is(err, domain.ErrAccessDenied):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeAccessDenied, "this event is private; an accepted invitation is required")
	case errors.Is(err, domain.ErrApprovalRequired):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeApprovalRequired, "this event requires approval before you can register")
	case errors.Is(err, domain.ErrApprovalPending):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeApprovalPending, "your approval request is still pending review")
	case errors.Is(err, domain.ErrApprovalRejected):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeApprovalRejected, "your approval request was rejected")
	case errors.Is(err, domain.ErrCapacityExceeded):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCapacityExceeded, "the event is at capacity")
	case errors.Is(err, domain.ErrAlreadyExists):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyExists, "already exists")
	case errors.Is(err, domain.ErrInvalidState):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInvalidState, "the operation is not valid in the current state")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid input")
	case errors.Is(err, domain.ErrRateLimited):
		apiErr := &helpers.APIError{Code: helpers.ErrCodeRateLimited, Message: "too many requests"}
		var rle *domain.RateLimitedError
		if errors.As(err, &rle) {
			apiErr.ResetAt = rle.ResetAt.Format(time.RFC3339)
		}
		helpers.WriteJSONErrorDetail(w, http.StatusTooManyRequests, apiErr)
	case errors.Is(err, domain.ErrUnavailable):
		logger.ErrorContext(r.Context(), "storage unavailable", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "temporarily unavailable, try again")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// pathEventID validates and returns the eventID path parameter, writing
// a 400 and returning false on failure.
func pathEventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}
