package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "github.com/JCHEPO/kiu/internal/delivery/http/helpers"
	"github.com/JCHEPO/kiu/internal/delivery/http/middleware"
	"github.com/JCHEPO/kiu/internal/domain"
)

// PostMessageRequest is the request body for POST /events/{eventID}/messages
type PostMessageRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (p PostMessageRequest) Validate() []string {
	if strings.TrimSpace(p.Text) == "" {
		return []string{"text is required"}
	}
	return nil
}

type WallController struct {
	Logger  *slog.Logger
	Service domain.WallService
}

func NewWallController(logger *slog.Logger, svc domain.WallService) *WallController {
	return &WallController{
		Logger:  logger,
		Service: svc,
	}
}

// Post godoc
// @Summary Post a wall message
// @Description Appends a message to the event's wall. Messages are immutable.
// @Tags wall
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body PostMessageRequest true "Message text"
// @Success 200 {object} helpers.APIResponse "data contains the populated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/messages [post]
func (c *WallController) Post(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	var req PostMessageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	detail, err := c.Service.PostMessage(r.Context(), r.PathValue("eventID"), userID, req.Text)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}
