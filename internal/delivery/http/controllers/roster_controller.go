package controllers

import (
	"log/slog"
	"net/http"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

type RosterController struct {
	Logger  *slog.Logger
	Service domain.RosterService
}

func NewRosterController(logger *slog.Logger, svc domain.RosterService) *RosterController {
	return &RosterController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *RosterController) pathIDs(w http.ResponseWriter, r *http.Request) (eventID, userID string, ok bool) {
	eventID, ok = pathEventID(w, r)
	if !ok {
		return "", "", false
	}
	userID = r.PathValue("userID")
	if userID == "" || !uuidRegex.MatchString(userID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid userID")
		return "", "", false
	}
	return eventID, userID, true
}

// ListAttendees godoc
// @Summary List an event's attendees with profile info
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/attendees [get]
func (c *RosterController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	attendees, err := c.Service.ListAttendees(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendees)
}

// GetRosterStats godoc
// @Summary Get attendee counts by type and check-in state
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/attendees/stats [get]
func (c *RosterController) GetRosterStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	stats, err := c.Service.GetRosterStats(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// CheckIn godoc
// @Summary Check an attendee in
// @Description Organizer only. Fails if the attendee is absent or already checked in.
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "Attendee user ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: already_exists"
// @Router /events/{eventID}/attendees/{userID}/check-in [post]
func (c *RosterController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.pathIDs(w, r)
	if !ok {
		return
	}
	organizerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	att, err := c.Service.CheckIn(r.Context(), eventID, organizerID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, att)
}

// CheckOut godoc
// @Summary Undo an attendee's check-in
// @Description Organizer only. Fails if the attendee is not checked in.
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "Attendee user ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /events/{eventID}/attendees/{userID}/check-out [post]
func (c *RosterController) CheckOut(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.pathIDs(w, r)
	if !ok {
		return
	}
	organizerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	att, err := c.Service.CheckOut(r.Context(), eventID, organizerID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, att)
}

// RemoveAttendee godoc
// @Summary Remove an attendee from the roster
// @Description Organizer only. The creator's roster entry cannot be removed.
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "Attendee user ID (UUID)"
// @Success 204 "Attendee removed"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /events/{eventID}/attendees/{userID} [delete]
func (c *RosterController) RemoveAttendee(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.pathIDs(w, r)
	if !ok {
		return
	}
	organizerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.RemoveAttendee(r.Context(), eventID, organizerID, userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
