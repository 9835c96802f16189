package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/workhive/notify/internal/modules/notification/domain"
	"github.com/workhive/notify/internal/modules/notification/template"
)

// DispatchInput is the single entry point shape through which every domain
// event becomes a notification.
type DispatchInput struct {
	Kind      domain.Kind
	Recipient uuid.UUID
	Sender    *uuid.UUID // nil for system-generated notifications
	Context   domain.ContextMap
	Priority  domain.Priority
}

// Dispatcher is the port domain modules (chat, marketplace) depend on.
// Callers are expected to log-and-continue on error: notification plumbing
// must never fail the triggering domain action.
type Dispatcher interface {
	Dispatch(ctx context.Context, in DispatchInput) (uuid.UUID, error)
}

// DispatchService renders, persists, and then best-effort pushes
// notifications. Persistence is the source of truth; the publish step is a
// latency optimization bounded by pushTimeout and its failures are never
// surfaced to the caller.
type DispatchService struct {
	repo        domain.NotificationRepository
	publisher   domain.Publisher
	pushTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

func NewDispatchService(repo domain.NotificationRepository, publisher domain.Publisher, pushTimeout time.Duration, logger *slog.Logger) *DispatchService {
	if pushTimeout <= 0 {
		pushTimeout = 2 * time.Second
	}
	return &DispatchService{
		repo:        repo,
		publisher:   publisher,
		pushTimeout: pushTimeout,
		now:         time.Now,
		logger:      logger,
	}
}

// Dispatch validates the input, renders the notification once, persists it
// unread, and pushes it to any live connection of the recipient.
//
// Two dispatches of logically the same event create two records; there is no
// deduplication at this layer.
func (s *DispatchService) Dispatch(ctx context.Context, in DispatchInput) (uuid.UUID, error) {
	if in.Recipient == uuid.Nil {
		dispatchedTotal.WithLabelValues(string(in.Kind), "invalid").Inc()
		return uuid.Nil, domain.ErrEmptyRecipient
	}
	// A user is never notified of their own action, except by the system
	// itself.
	if in.Sender != nil && *in.Sender == in.Recipient && in.Kind != domain.KindSystemAnnouncement {
		dispatchedTotal.WithLabelValues(string(in.Kind), "invalid").Inc()
		return uuid.Nil, domain.ErrSelfNotification
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityNormal
	}

	rendered, err := template.Render(in.Kind, in.Context)
	if err != nil {
		dispatchedTotal.WithLabelValues(string(in.Kind), "render_error").Inc()
		return uuid.Nil, err
	}

	notification := &domain.Notification{
		ID:        uuid.New(),
		Recipient: in.Recipient,
		Sender:    in.Sender,
		Kind:      in.Kind,
		Title:     rendered.Title,
		Message:   rendered.Message,
		Context:   in.Context,
		Priority:  in.Priority,
		IsRead:    false,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		dispatchedTotal.WithLabelValues(string(in.Kind), "store_error").Inc()
		return uuid.Nil, fmt.Errorf("persist notification: %w", err)
	}
	dispatchedTotal.WithLabelValues(string(in.Kind), "ok").Inc()

	s.push(notification)
	return notification.ID, nil
}

// push forwards the already-persisted record through the delivery channel.
// It runs on the request goroutine but under its own deadline, detached from
// the caller's context so a cancelled request cannot abort a push for a row
// that is already durable.
func (s *DispatchService) push(notification *domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()

	event := domain.Event{Type: domain.EventNewNotification, Notification: notification}
	if err := s.publisher.Publish(ctx, event); err != nil {
		deliveryPushFailures.Inc()
		s.logger.Warn("notification push failed, client will pick it up on next poll",
			"notification_id", notification.ID,
			"recipient", notification.Recipient,
			"error", err)
	}
}
