package controllers

import (
	"log/slog"
	"net/http"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// UpsertRSVPRequest is the request body for PUT /events/{eventID}/rsvp.
type UpsertRSVPRequest struct {
	Status     string `json:"status"`
	GuestCount int    `json:"guest_count"`
	Notes      string `json:"notes"`
}

// Validate implements helpers.Validator.
func (r *UpsertRSVPRequest) Validate() []string {
	var errs []string
	if !domain.RSVPStatus(r.Status).Valid() {
		errs = append(errs, "status must be one of going, maybe, not_going")
	}
	if r.GuestCount < 0 {
		errs = append(errs, "guest_count must not be negative")
	}
	return errs
}

// UpsertRSVP godoc
// @Summary Set the current user's RSVP for an event
// @Description Records or overwrites the authenticated user's RSVP. A "going" request may come back with status "waitlisted" when the event is full and runs a waiting list.
// @Tags rsvp
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpsertRSVPRequest true "RSVP"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: access_denied | approval_required | approval_pending | approval_rejected"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Router /events/{eventID}/rsvp [put]
func (c *RegistrationController) UpsertRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req UpsertRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	rsvp, err := c.Service.UpsertRSVP(r.Context(), eventID, userID, domain.RSVPStatus(req.Status), req.GuestCount, req.Notes)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// RemoveRSVP godoc
// @Summary Cancel the current user's RSVP
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "RSVP removed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [delete]
func (c *RegistrationController) RemoveRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.RemoveRSVP(r.Context(), eventID, userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRSVP godoc
// @Summary Get the current user's RSVP for an event
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [get]
func (c *RegistrationController) GetRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	rsvp, err := c.Service.GetRSVP(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// GetRSVPSummary godoc
// @Summary Get RSVP counts for an event
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/rsvp-summary [get]
func (c *RegistrationController) GetRSVPSummary(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.GetRSVPSummary(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// GetWaitlist godoc
// @Summary List waitlisted RSVPs for an event, oldest first
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/waitlist [get]
func (c *RegistrationController) GetWaitlist(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	waitlist, err := c.Service.GetWaitlist(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, waitlist)
}
