package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/workhive/notify/internal/modules/notification/domain"
)

// ReadService owns the recipient-facing read surface and the read-state
// transitions.
type ReadService struct {
	repo domain.NotificationRepository
	now  func() time.Time
}

func NewReadService(repo domain.NotificationRepository) *ReadService {
	return &ReadService{repo: repo, now: time.Now}
}

func (s *ReadService) List(ctx context.Context, recipient uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByRecipient(ctx, recipient, limit, offset)
}

// MarkRead is idempotent: a second call for the same id is a no-op success
// and read_at keeps the time of the first successful call.
func (s *ReadService) MarkRead(ctx context.Context, id, recipient uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, recipient, s.now())
}

// MarkUnread is the explicit reverse transition, a recorded state change
// rather than an error path.
func (s *ReadService) MarkUnread(ctx context.Context, id, recipient uuid.UUID) error {
	return s.repo.MarkUnread(ctx, id, recipient)
}

// MarkAllRead snapshots the current time and only marks notifications that
// existed at the snapshot. A notification dispatched while the update runs
// stays unread instead of being swallowed by the blanket update.
func (s *ReadService) MarkAllRead(ctx context.Context, recipient uuid.UUID, kind *domain.Kind) (int64, error) {
	asOf := s.now()
	return s.repo.MarkAllRead(ctx, recipient, kind, asOf)
}

// Delete is a separate explicit operation, never implied by marking read.
func (s *ReadService) Delete(ctx context.Context, id, recipient uuid.UUID) error {
	return s.repo.Delete(ctx, id, recipient)
}

func (s *ReadService) UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, recipient)
}
