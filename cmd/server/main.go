package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/workhive/notify/internal/gateway"
	"github.com/workhive/notify/internal/gateway/middleware"
	"github.com/workhive/notify/internal/modules/auth"
	"github.com/workhive/notify/internal/modules/chat"
	"github.com/workhive/notify/internal/modules/marketplace"
	"github.com/workhive/notify/internal/modules/notification"
	"github.com/workhive/notify/internal/shared/infrastructure/config"
	"github.com/workhive/notify/internal/shared/infrastructure/database"
	"github.com/workhive/notify/pkg/migration"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if err := migration.AutoMigrate(cfg.Database.URL(), "migrations", logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to postgres")

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		// Redis only carries the cross-instance push channel; the service
		// degrades to process-local delivery without it.
		logger.Warn("redis unavailable, falling back to local delivery", "error", err)
		rdb = nil
	}
	if !cfg.Notify.UseRedisDelivery {
		rdb = nil
	}

	notifyModule := notification.NewModule(db, rdb, notification.Config{
		PushTimeout:     cfg.Notify.PushTimeout,
		RetentionMaxAge: cfg.Notify.RetentionMaxAge,
		PurgeInterval:   cfg.Notify.PurgeInterval,
		SourceTimeout:   cfg.Notify.SourceTimeout,
	}, logger)

	authModule := auth.NewModule(db, cfg.JWT.Secret, cfg.JWT.Expiry)
	chatModule := chat.NewModule(db, notifyModule.Dispatcher(), logger)
	marketModule := marketplace.NewModule(db, notifyModule.Dispatcher(), logger)

	notifyModule.AddUnreadSources(chatModule.Service(), marketModule.Service())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyModule.Start(ctx)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      authMiddleware,
		NotificationHandler: notifyModule.HTTPHandler(),
		ChatHandler:         chatModule.HTTPHandler(),
		ApplicationHandler:  marketModule.HTTPHandler(),
	})

	var handler http.Handler = mux
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.CORSMiddleware(handler, cfg.Server.AllowedOrigins)

	server := gateway.NewServer(cfg.Server.Port, handler)
	if err := server.Start(cancel); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
