package controllers

import (
	"log/slog"
	"net/http"

	h "github.com/JCHEPO/kiu/internal/delivery/http/helpers"
	"github.com/JCHEPO/kiu/internal/delivery/http/middleware"
	"github.com/JCHEPO/kiu/internal/domain"
)

// MarkAllReadResponse is the response body for PUT /notifications/read-all
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// List godoc
// @Summary List the caller's notifications
// @Description Newest first, capped at 50, each with the event title resolved.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the notification list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications [get]
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	notifications, err := c.Service.List(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, notifications)
}

// MarkRead godoc
// @Summary Mark one notification read
// @Description Only the recipient can mark it; anyone else gets a 404.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} helpers.APIResponse "data contains the notification"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{notificationID}/read [put]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	n, err := c.Service.MarkRead(r.Context(), userID, r.PathValue("notificationID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, n)
}

// MarkAllRead godoc
// @Summary Mark all the caller's notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the number updated"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications/read-all [put]
func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	count, err := c.Service.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MarkAllReadResponse{Updated: count})
}
