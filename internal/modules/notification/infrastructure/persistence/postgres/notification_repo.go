package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/workhive/notify/internal/modules/notification/domain"
)

type PgNotificationRepository struct {
	db *sqlx.DB
}

func NewPgNotificationRepository(db *sqlx.DB) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO notifications (id, recipient, sender, kind, title, message, context, priority, is_read, created_at, read_at)
		VALUES (:id, :recipient, :sender, :kind, :title, :message, :context, :priority, :is_read, :created_at, :read_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, n)
	return err
}

func (r *PgNotificationRepository) ListByRecipient(ctx context.Context, recipient uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var notifications []domain.Notification
	err := r.db.SelectContext(ctx, &notifications, query, recipient, limit, offset)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips the row to read. COALESCE keeps the original read_at when
// the row was already read, which makes the call idempotent.
func (r *PgNotificationRepository) MarkRead(ctx context.Context, id, recipient uuid.UUID, at time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, recipient, at)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) MarkUnread(ctx context.Context, id, recipient uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = FALSE, read_at = NULL
		WHERE id = $1 AND recipient = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead is bounded by created_at <= asOf so a notification dispatched
// after the caller took its snapshot is never swallowed by the blanket
// update.
func (r *PgNotificationRepository) MarkAllRead(ctx context.Context, recipient uuid.UUID, kind *domain.Kind, asOf time.Time) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $2
		WHERE recipient = $1 AND is_read = FALSE AND created_at <= $2
	`
	args := []interface{}{recipient, asOf}
	if kind != nil {
		query += ` AND kind = $3`
		args = append(args, *kind)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PgNotificationRepository) Delete(ctx context.Context, id, recipient uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient = $2`
	res, err := r.db.ExecContext(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient = $1 AND is_read = FALSE
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, recipient)
	return count, err
}

func (r *PgNotificationRepository) PurgeReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
