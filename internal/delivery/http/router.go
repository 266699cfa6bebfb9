package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/JCHEPO/kiu/internal/delivery/http/controllers"
	"github.com/JCHEPO/kiu/internal/delivery/http/helpers"
	"github.com/JCHEPO/kiu/internal/delivery/http/middleware"
	"github.com/JCHEPO/kiu/internal/domain"
)

// Controllers groups everything the router mounts.
type Controllers struct {
	Auth          *controllers.AuthController
	Event         *controllers.EventController
	Participation *controllers.ParticipationController
	Item          *controllers.ItemController
	Wall          *controllers.WallController
	Notification  *controllers.NotificationController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /users/me", auth(c.Auth.Me))

	// Events
	mux.HandleFunc("GET /events", c.Event.List)
	mux.HandleFunc("POST /events", auth(c.Event.Create))
	mux.HandleFunc("GET /events/{eventID}", c.Event.Get)
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Event.Edit))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.Delete))

	// Roster
	mux.HandleFunc("POST /events/{eventID}/join", auth(c.Participation.Join))
	mux.HandleFunc("POST /events/{eventID}/leave", auth(c.Participation.Leave))
	mux.HandleFunc("POST /events/{eventID}/manual-participants", auth(c.Participation.AddManual))
	mux.HandleFunc("DELETE /events/{eventID}/manual-participants/{index}", auth(c.Participation.RemoveManual))

	// Supply list and wall
	mux.HandleFunc("POST /events/{eventID}/items", auth(c.Item.Add))
	mux.HandleFunc("POST /events/{eventID}/items/{itemID}/claim", auth(c.Item.Claim))
	mux.HandleFunc("POST /events/{eventID}/messages", auth(c.Wall.Post))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(c.Notification.List))
	mux.HandleFunc("PUT /notifications/{notificationID}/read", auth(c.Notification.MarkRead))
	mux.HandleFunc("PUT /notifications/read-all", auth(c.Notification.MarkAllRead))

	// Operational endpoints
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
