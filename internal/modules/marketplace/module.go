package marketplace

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/workhive/notify/internal/modules/marketplace/application"
	"github.com/workhive/notify/internal/modules/marketplace/infrastructure/persistence/postgres"
	marketplace_http "github.com/workhive/notify/internal/modules/marketplace/interfaces/http"
	notifapp "github.com/workhive/notify/internal/modules/notification/application"
)

type Module struct {
	service *application.ApplicationService
	handler *marketplace_http.ApplicationHandler
}

func NewModule(db *sqlx.DB, dispatcher notifapp.Dispatcher, logger *slog.Logger) *Module {
	repo := postgres.NewPgApplicationRepository(db)
	service := application.NewApplicationService(repo, dispatcher, logger)
	handler := marketplace_http.NewApplicationHandler(service)

	return &Module{service: service, handler: handler}
}

func (m *Module) HTTPHandler() *marketplace_http.ApplicationHandler {
	return m.handler
}

// Service exposes the application service, which doubles as the aggregator's
// pending-applications unread source.
func (m *Module) Service() *application.ApplicationService {
	return m.service
}
