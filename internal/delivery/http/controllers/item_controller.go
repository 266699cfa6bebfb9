package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "github.com/JCHEPO/kiu/internal/delivery/http/helpers"
	"github.com/JCHEPO/kiu/internal/delivery/http/middleware"
	"github.com/JCHEPO/kiu/internal/domain"
)

// AddItemRequest is the request body for POST /events/{eventID}/items
type AddItemRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (a AddItemRequest) Validate() []string {
	if strings.TrimSpace(a.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

type ItemController struct {
	Logger  *slog.Logger
	Service domain.ItemService
}

func NewItemController(logger *slog.Logger, svc domain.ItemService) *ItemController {
	return &ItemController{
		Logger:  logger,
		Service: svc,
	}
}

// Add godoc
// @Summary Add a supply item
// @Description Adds an unclaimed item to the event's supply list. Caller must be the creator or a participant.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body AddItemRequest true "Item name"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/items [post]
func (c *ItemController) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	var req AddItemRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	detail, err := c.Service.AddItem(r.Context(), r.PathValue("eventID"), userID, req.Name)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// Claim godoc
// @Summary Claim a supply item
// @Description Marks the item as brought by the caller. A claim is permanent; of two concurrent claims exactly one wins.
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param itemID path string true "Item ID"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already claimed)"
// @Router /events/{eventID}/items/{itemID}/claim [post]
func (c *ItemController) Claim(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	detail, err := c.Service.ClaimItem(r.Context(), r.PathValue("eventID"), userID, r.PathValue("itemID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}
