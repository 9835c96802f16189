package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/workhive/notify/internal/modules/chat/domain"
	notifapp "github.com/workhive/notify/internal/modules/notification/application"
	notifdomain "github.com/workhive/notify/internal/modules/notification/domain"
)

// ChatService persists messages and raises new_message notifications for the
// other room members. Notification failures are logged and swallowed: the
// message send is the primary action and always wins.
type ChatService struct {
	repo       domain.MessageRepository
	dispatcher notifapp.Dispatcher
	logger     *slog.Logger
}

func NewChatService(repo domain.MessageRepository, dispatcher notifapp.Dispatcher, logger *slog.Logger) *ChatService {
	return &ChatService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// SendMessage stores the message, then notifies every other member of the
// room.
func (s *ChatService) SendMessage(ctx context.Context, roomID, sender uuid.UUID, senderName, body string) (*domain.Message, error) {
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}

	members, err := s.repo.RoomMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !contains(members, sender) {
		return nil, domain.ErrNotRoomMember
	}

	message := &domain.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		Sender:    sender,
		Body:      body,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	for _, member := range members {
		if member == sender {
			continue
		}
		senderID := sender
		_, err := s.dispatcher.Dispatch(ctx, notifapp.DispatchInput{
			Kind:      notifdomain.KindNewMessage,
			Recipient: member,
			Sender:    &senderID,
			Context: notifdomain.ContextMap{
				"sender_name": senderName,
				"room_id":     roomID.String(),
				"message_id":  message.ID.String(),
			},
			Priority: notifdomain.PriorityNormal,
		})
		if err != nil {
			s.logger.Warn("new message notification failed",
				"room_id", roomID, "recipient", member, "error", err)
		}
	}

	return message, nil
}

func (s *ChatService) ListRoomMessages(ctx context.Context, roomID, requester uuid.UUID, limit, offset int) ([]domain.Message, error) {
	members, err := s.repo.RoomMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !contains(members, requester) {
		return nil, domain.ErrNotRoomMember
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByRoom(ctx, roomID, limit, offset)
}

// MarkRoomRead marks messages from others in the room as read, typically on
// room open. Returns the number of messages affected.
func (s *ChatService) MarkRoomRead(ctx context.Context, roomID, reader uuid.UUID) (int64, error) {
	members, err := s.repo.RoomMembers(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if !contains(members, reader) {
		return 0, domain.ErrNotRoomMember
	}
	return s.repo.MarkRoomRead(ctx, roomID, reader)
}

func (s *ChatService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// Name makes the service usable as an unread aggregator source.
func (s *ChatService) Name() string { return "chat" }

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
