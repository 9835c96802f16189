package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Message is one chat message inside a room. IsRead tracks whether the
// counterpart has seen it; the unread badge for a user is derived from this
// flag at query time, never stored.
type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RoomID    uuid.UUID `json:"room_id" db:"room_id"`
	Sender    uuid.UUID `json:"sender" db:"sender"`
	Body      string    `json:"body" db:"body"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotRoomMember = errors.New("user is not a member of this room")
	ErrEmptyMessage  = errors.New("message body is required")
)

type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	ListByRoom(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]Message, error)

	// RoomMembers returns the user ids participating in the room.
	RoomMembers(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error)

	// MarkRoomRead marks messages in the room sent by others as read.
	MarkRoomRead(ctx context.Context, roomID, reader uuid.UUID) (int64, error)

	// UnreadCount counts unread messages addressed to the user: messages in
	// rooms the user belongs to, sent by someone else, still unread.
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}
