package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	h "github.com/JCHEPO/kiu/internal/delivery/http/helpers"
	"github.com/JCHEPO/kiu/internal/delivery/http/middleware"
	"github.com/JCHEPO/kiu/internal/domain"
)

// AddManualParticipantRequest is the request body for POST /events/{eventID}/manual-participants
type AddManualParticipantRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (a AddManualParticipantRequest) Validate() []string {
	if strings.TrimSpace(a.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

type ParticipationController struct {
	Logger  *slog.Logger
	Service domain.ParticipationService
}

func NewParticipationController(logger *slog.Logger, svc domain.ParticipationService) *ParticipationController {
	return &ParticipationController{
		Logger:  logger,
		Service: svc,
	}
}

// Join godoc
// @Summary Join an event
// @Description Adds the caller to the roster if the event admits their gender and has a free spot.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (gender restriction)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full or already joined)"
// @Router /events/{eventID}/join [post]
func (c *ParticipationController) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	detail, err := c.Service.Join(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// Leave godoc
// @Summary Leave an event
// @Description Removes the caller from the roster. Leaving an event never joined is a no-op. The creator cannot leave.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (creator cannot leave)"
// @Router /events/{eventID}/leave [post]
func (c *ParticipationController) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	detail, err := c.Service.Leave(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// AddManual godoc
// @Summary Add a manual participant
// @Description Creator only. Adds a free-text attendee without an account. Counts against capacity.
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body AddManualParticipantRequest true "Attendee name"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full)"
// @Router /events/{eventID}/manual-participants [post]
func (c *ParticipationController) AddManual(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	var req AddManualParticipantRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	detail, err := c.Service.AddManualParticipant(r.Context(), r.PathValue("eventID"), userID, req.Name)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// RemoveManual godoc
// @Summary Remove a manual participant by position
// @Description Creator only. The index is the zero-based position in the manual participant list.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param index path int true "Zero-based position"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (index out of bounds)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/manual-participants/{index} [delete]
func (c *ParticipationController) RemoveManual(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "index must be an integer")
		return
	}
	detail, err := c.Service.RemoveManualParticipant(r.Context(), r.PathValue("eventID"), userID, index)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}
