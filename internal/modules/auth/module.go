package auth

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/workhive/notify/internal/modules/auth/application"
	"github.com/workhive/notify/internal/modules/auth/infrastructure/persistence/postgres"
	auth_http "github.com/workhive/notify/internal/modules/auth/interfaces/http"
)

type Module struct {
	service *application.AuthService
	handler *auth_http.AuthHandler
}

func NewModule(db *sqlx.DB, jwtSecret string, jwtExpiry time.Duration) *Module {
	repo := postgres.NewPgUserRepository(db)
	service := application.NewAuthService(repo, jwtSecret, jwtExpiry)
	handler := auth_http.NewAuthHandler(service)

	return &Module{service: service, handler: handler}
}

func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}

func (m *Module) Service() *application.AuthService {
	return m.service
}
