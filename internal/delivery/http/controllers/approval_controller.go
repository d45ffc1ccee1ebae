package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

type ApprovalController struct {
	Logger  *slog.Logger
	Service domain.ApprovalService
}

func NewApprovalController(logger *slog.Logger, svc domain.ApprovalService) *ApprovalController {
	return &ApprovalController{
		Logger:  logger,
		Service: svc,
	}
}

// RequestApprovalRequest is the request body for POST /events/{eventID}/approval-requests.
type RequestApprovalRequest struct {
	Message    string `json:"message"`
	GuestCount int    `json:"guest_count"`
}

// Validate implements helpers.Validator.
func (r *RequestApprovalRequest) Validate() []string {
	var errs []string
	if r.GuestCount < 0 {
		errs = append(errs, "guest_count must not be negative")
	}
	if len(r.Message) > 2000 {
		errs = append(errs, "message must be at most 2000 characters")
	}
	return errs
}

// RequestApproval godoc
// @Summary Request approval to register for an event
// @Description Creates a pending approval request, or resubmits a previously rejected one. Pending and approved requests cannot be resubmitted.
// @Tags approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.RequestApprovalRequest true "Request"
// @Success 201 {object} helpers.APIResponse
// @Failure 409 {object} helpers.APIResponse "error.code: already_exists | capacity_exceeded | invalid_state"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Router /events/{eventID}/approval-requests [post]
func (c *ApprovalController) RequestApproval(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req RequestApprovalRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	created, err := c.Service.RequestApproval(r.Context(), eventID, userID, req.Message, req.GuestCount)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// GetApprovalStatus godoc
// @Summary Get the current user's approval request for an event
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/approval-requests/me [get]
func (c *ApprovalController) GetApprovalStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	req, err := c.Service.GetApprovalStatus(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, req)
}

// ReviewApprovalRequest is the request body for POST /approval-requests/{requestID}/review.
type ReviewApprovalRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

// Validate implements helpers.Validator.
func (r *ReviewApprovalRequest) Validate() []string {
	action := strings.ToLower(strings.TrimSpace(r.Action))
	if action != string(domain.ReviewApprove) && action != string(domain.ReviewReject) {
		return []string{"action must be approve or reject"}
	}
	r.Action = action
	return nil
}

// ReviewApproval godoc
// @Summary Approve or reject a pending approval request
// @Description Only the event organizer can review. Approval re-checks capacity; if the event filled up since the request, the review fails and the request stays pending.
// @Tags approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param requestID path string true "Approval request ID (UUID)"
// @Param body body controllers.ReviewApprovalRequest true "Decision"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded | invalid_state"
// @Router /approval-requests/{requestID}/review [post]
func (c *ApprovalController) ReviewApproval(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("requestID")
	if requestID == "" || !uuidRegex.MatchString(requestID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid requestID")
		return
	}
	var req ReviewApprovalRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reviewed, err := c.Service.ReviewApproval(r.Context(), requestID, reviewerID, domain.ReviewAction(req.Action), req.Notes)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reviewed)
}
