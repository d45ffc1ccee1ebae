package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Every write route runs behind auth and its action's rate limit; the
// limit check completes before any service-level event lock is taken.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	limiter domain.RateLimiter,
	registration *controllers.RegistrationController,
	approval *controllers.ApprovalController,
	roster *controllers.RosterController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	limited := func(action string, h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RateLimit(limiter, action)(h))
	}

	// RSVPs
	mux.HandleFunc("PUT /events/{eventID}/rsvp", limited("upsert_rsvp", registration.UpsertRSVP))
	mux.HandleFunc("DELETE /events/{eventID}/rsvp", limited("remove_rsvp", registration.RemoveRSVP))
	mux.HandleFunc("GET /events/{eventID}/rsvp", auth(registration.GetRSVP))
	mux.HandleFunc("GET /events/{eventID}/rsvp-summary", auth(registration.GetRSVPSummary))
	mux.HandleFunc("GET /events/{eventID}/waitlist", auth(registration.GetWaitlist))

	// Approvals
	mux.HandleFunc("POST /events/{eventID}/approval-requests", limited("request_approval", approval.RequestApproval))
	mux.HandleFunc("GET /events/{eventID}/approval-requests/me", auth(approval.GetApprovalStatus))
	mux.HandleFunc("POST /approval-requests/{requestID}/review", limited("review_approval", approval.ReviewApproval))

	// Roster
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(roster.ListAttendees))
	mux.HandleFunc("GET /events/{eventID}/attendees/stats", auth(roster.GetRosterStats))
	mux.HandleFunc("POST /events/{eventID}/attendees/{userID}/check-in", limited("check_in", roster.CheckIn))
	mux.HandleFunc("POST /events/{eventID}/attendees/{userID}/check-out", limited("check_out", roster.CheckOut))
	mux.HandleFunc("DELETE /events/{eventID}/attendees/{userID}", limited("remove_attendee", roster.RemoveAttendee))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
