package chat

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/workhive/notify/internal/modules/chat/application"
	"github.com/workhive/notify/internal/modules/chat/infrastructure/persistence/postgres"
	chat_http "github.com/workhive/notify/internal/modules/chat/interfaces/http"
	notifapp "github.com/workhive/notify/internal/modules/notification/application"
)

type Module struct {
	service *application.ChatService
	handler *chat_http.ChatHandler
}

func NewModule(db *sqlx.DB, dispatcher notifapp.Dispatcher, logger *slog.Logger) *Module {
	repo := postgres.NewPgMessageRepository(db)
	service := application.NewChatService(repo, dispatcher, logger)
	handler := chat_http.NewChatHandler(service)

	return &Module{service: service, handler: handler}
}

func (m *Module) HTTPHandler() *chat_http.ChatHandler {
	return m.handler
}

// Service exposes the chat service, which doubles as the aggregator's chat
// unread source.
func (m *Module) Service() *application.ChatService {
	return m.service
}
