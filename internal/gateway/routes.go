package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/workhive/notify/internal/gateway/middleware"
	auth_http "github.com/workhive/notify/internal/modules/auth/interfaces/http"
	chat_http "github.com/workhive/notify/internal/modules/chat/interfaces/http"
	marketplace_http "github.com/workhive/notify/internal/modules/marketplace/interfaces/http"
	notification_http "github.com/workhive/notify/internal/modules/notification/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	NotificationHandler *notification_http.NotificationHandler
	ChatHandler         *chat_http.ChatHandler
	ApplicationHandler  *marketplace_http.ApplicationHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Auth Routes
	mux.HandleFunc("POST /register", config.AuthHandler.Register)
	mux.HandleFunc("POST /login", config.AuthHandler.Login)
	mux.Handle("GET /me", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AuthHandler.Me)))

	// Notification Routes
	mux.Handle("GET /notifications", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.List)))
	mux.Handle("GET /notifications/unread-count", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.UnreadCount)))
	mux.Handle("GET /notifications/unread-summary", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.UnreadSummary)))
	mux.Handle("PATCH /notifications/{id}/read", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkRead)))
	mux.Handle("PATCH /notifications/{id}/unread", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkUnread)))
	mux.Handle("PATCH /notifications/read-all", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAllRead)))
	mux.Handle("DELETE /notifications/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Delete)))
	mux.Handle("GET /ws", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Subscribe)))

	// Chat Routes
	mux.Handle("POST /rooms/{id}/messages", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ChatHandler.SendMessage)))
	mux.Handle("GET /rooms/{id}/messages", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ChatHandler.ListMessages)))
	mux.Handle("POST /rooms/{id}/read", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ChatHandler.MarkRoomRead)))
	mux.Handle("GET /chat/unread-count", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ChatHandler.UnreadCount)))

	// Job Application Routes
	mux.Handle("POST /jobs/{id}/applications", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ApplicationHandler.Apply)))
	mux.Handle("GET /applications", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ApplicationHandler.ListMine)))
	mux.Handle("PATCH /applications/{id}/approve", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ApplicationHandler.Approve)))
	mux.Handle("PATCH /applications/{id}/reject", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.ApplicationHandler.Reject)))

	return mux
}
