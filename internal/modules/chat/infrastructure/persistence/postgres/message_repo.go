package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/workhive/notify/internal/modules/chat/domain"
)

type PgMessageRepository struct {
	db *sqlx.DB
}

func NewPgMessageRepository(db *sqlx.DB) *PgMessageRepository {
	return &PgMessageRepository{db: db}
}

func (r *PgMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO messages (id, room_id, sender, body, is_read, created_at)
		VALUES (:id, :room_id, :sender, :body, :is_read, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, m)
	return err
}

func (r *PgMessageRepository) ListByRoom(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	query := `
		SELECT * FROM messages
		WHERE room_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var messages []domain.Message
	err := r.db.SelectContext(ctx, &messages, query, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PgMessageRepository) RoomMembers(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM room_members WHERE room_id = $1`
	var members []uuid.UUID
	err := r.db.SelectContext(ctx, &members, query, roomID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, domain.ErrRoomNotFound
	}
	return members, nil
}

func (r *PgMessageRepository) MarkRoomRead(ctx context.Context, roomID, reader uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE room_id = $1 AND sender <> $2 AND is_read = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, roomID, reader)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnreadCount is a read-time aggregate over the user's rooms, recomputed on
// demand rather than maintained as a stored counter.
func (r *PgMessageRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN room_members rm ON rm.room_id = m.room_id
		WHERE rm.user_id = $1 AND m.sender <> $1 AND m.is_read = FALSE
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}
