package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error

	// ListByRecipient returns the recipient's stream ordered newest first
	// (created_at DESC, id DESC).
	ListByRecipient(ctx context.Context, recipient uuid.UUID, limit, offset int) ([]Notification, error)

	// MarkRead is idempotent: marking an already-read notification succeeds
	// and leaves the original read_at untouched. Returns
	// ErrNotificationNotFound when no row matches id and recipient.
	MarkRead(ctx context.Context, id, recipient uuid.UUID, at time.Time) error

	// MarkUnread is the explicit reverse transition; it clears read_at.
	MarkUnread(ctx context.Context, id, recipient uuid.UUID) error

	// MarkAllRead flips to read every unread notification for the recipient
	// created at or before asOf, optionally restricted to one kind.
	// Notifications created after asOf are untouched. Returns the number of
	// rows marked.
	MarkAllRead(ctx context.Context, recipient uuid.UUID, kind *Kind, asOf time.Time) (int64, error)

	Delete(ctx context.Context, id, recipient uuid.UUID) error

	UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error)

	// PurgeReadOlderThan deletes read notifications created before cutoff.
	// Unread notifications are never purged. Returns rows deleted.
	PurgeReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
