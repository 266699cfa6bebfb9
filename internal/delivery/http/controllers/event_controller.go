package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "github.com/JCHEPO/kiu/internal/delivery/http/helpers"
	"github.com/JCHEPO/kiu/internal/delivery/http/middleware"
	"github.com/JCHEPO/kiu/internal/domain"
)

// CreateEventRequest is the request body for POST /events
type CreateEventRequest struct {
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	Date              time.Time `json:"date"`
	Cost              int       `json:"cost"`
	Category          string    `json:"category"`
	Subcategory       string    `json:"subcategory"`
	MaxParticipants   int       `json:"max_participants"`
	GenderRestriction string    `json:"gender_restriction"` // "men_only", "women_only" or "mixed" (default)
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if c.Cost < 0 {
		errs = append(errs, "cost must not be negative")
	}
	if c.MaxParticipants < 1 {
		errs = append(errs, "max_participants must be at least 1")
	}
	if r := c.GenderRestriction; r != "" && !domain.GenderRestriction(r).Valid() {
		errs = append(errs, "gender_restriction must be \"men_only\", \"women_only\" or \"mixed\"")
	}
	return errs
}

// EditEventRequest is the request body for PUT /events/{eventID}. Omitted
// fields are left unchanged.
type EditEventRequest struct {
	Location *string    `json:"location"`
	Date     *time.Time `json:"date"`
}

// Validate implements Validator.
func (e EditEventRequest) Validate() []string {
	var errs []string
	if e.Location == nil && e.Date == nil {
		errs = append(errs, "at least one of location or date is required")
	}
	if e.Location != nil && strings.TrimSpace(*e.Location) == "" {
		errs = append(errs, "location must not be blank")
	}
	if e.Date != nil && e.Date.IsZero() {
		errs = append(errs, "date must be a valid timestamp")
	}
	return errs
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Propose a new event
// @Description Create an event. The caller becomes the creator and its first participant.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the populated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event := domain.NewEvent(
		strings.TrimSpace(req.Title), req.Description, strings.TrimSpace(req.Location),
		req.Date, req.Cost, req.Category, req.Subcategory, req.MaxParticipants,
		domain.GenderRestriction(req.GenderRestriction), userID, time.Now(),
	)
	detail, err := c.Service.Create(r.Context(), event)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, detail)
}

// List godoc
// @Summary List events
// @Description List events with creator and roster count. The optional gender query filters out events whose restriction would not admit that gender.
// @Tags events
// @Produce json
// @Param gender query string false "Filter by admissible gender: man, woman or other"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.EventFilter
	if g := r.URL.Query().Get("gender"); g != "" {
		gender := domain.Gender(strings.ToLower(g))
		if !gender.Valid() {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "gender must be \"man\", \"woman\" or \"other\"")
			return
		}
		filter.Gender = gender
	}
	events, err := c.Service.List(r.Context(), filter)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get one event
// @Description Full event snapshot: creator, participants, manual participants, items, and wall messages.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := c.Service.GetDetail(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// Edit godoc
// @Summary Edit an event's location and/or date
// @Description Creator only. A date change is rejected when the event's current date is less than 24 hours away; in that case nothing is applied. Changing a value notifies every other participant.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body EditEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (date too close to change)"
// @Router /events/{eventID} [put]
func (c *EventController) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	var req EditEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.EventPatch{Location: req.Location, Date: req.Date}
	detail, err := c.Service.Edit(r.Context(), r.PathValue("eventID"), userID, patch)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// Delete godoc
// @Summary Delete an event
// @Description Creator only. Removes the event and everything attached to it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data is null"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	if err := c.Service.Delete(r.Context(), r.PathValue("eventID"), userID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, nil)
}
