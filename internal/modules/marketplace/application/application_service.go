package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/workhive/notify/internal/modules/marketplace/domain"
	notifapp "github.com/workhive/notify/internal/modules/notification/application"
	notifdomain "github.com/workhive/notify/internal/modules/notification/domain"
)

// ApplicationService owns the job-application lifecycle, each transition
// raising the matching notification. A notification failure never fails the
// transition itself.
type ApplicationService struct {
	repo       domain.ApplicationRepository
	dispatcher notifapp.Dispatcher
	logger     *slog.Logger
}

func NewApplicationService(repo domain.ApplicationRepository, dispatcher notifapp.Dispatcher, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, dispatcher: dispatcher, logger: logger}
}

type ApplyInput struct {
	JobID      uuid.UUID
	JobTitle   string
	WorkerID   uuid.UUID
	WorkerName string
	OwnerID    uuid.UUID
}

// Apply records a new pending application and notifies the job owner.
func (s *ApplicationService) Apply(ctx context.Context, in ApplyInput) (*domain.JobApplication, error) {
	if in.WorkerID == in.OwnerID {
		return nil, domain.ErrOwnJob
	}

	app := &domain.JobApplication{
		ID:         uuid.New(),
		JobID:      in.JobID,
		JobTitle:   in.JobTitle,
		WorkerID:   in.WorkerID,
		WorkerName: in.WorkerName,
		OwnerID:    in.OwnerID,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("persist application: %w", err)
	}

	s.notify(ctx, notifdomain.KindJobApplication, app.OwnerID, app.WorkerID, notifdomain.ContextMap{
		"worker_name":    app.WorkerName,
		"job_title":      app.JobTitle,
		"job_id":         app.JobID.String(),
		"application_id": app.ID.String(),
	})

	return app, nil
}

// Approve transitions a pending application and notifies the worker with
// high priority.
func (s *ApplicationService) Approve(ctx context.Context, id, decidedBy uuid.UUID) (*domain.JobApplication, error) {
	return s.decide(ctx, id, decidedBy, domain.StatusApproved, notifdomain.KindApplicationApproved)
}

// Reject transitions a pending application and notifies the worker.
func (s *ApplicationService) Reject(ctx context.Context, id, decidedBy uuid.UUID) (*domain.JobApplication, error) {
	return s.decide(ctx, id, decidedBy, domain.StatusRejected, notifdomain.KindApplicationRejected)
}

func (s *ApplicationService) decide(ctx context.Context, id, decidedBy uuid.UUID, status domain.ApplicationStatus, kind notifdomain.Kind) (*domain.JobApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.OwnerID != decidedBy {
		return nil, domain.ErrNotJobOwner
	}

	decidedAt := time.Now()
	if err := s.repo.UpdateStatus(ctx, id, status, decidedAt); err != nil {
		return nil, err
	}
	app.Status = status
	app.DecidedAt = &decidedAt

	priority := notifdomain.PriorityNormal
	if kind == notifdomain.KindApplicationApproved {
		priority = notifdomain.PriorityHigh
	}
	s.notify(ctx, kind, app.WorkerID, app.OwnerID, notifdomain.ContextMap{
		"job_title":      app.JobTitle,
		"job_id":         app.JobID.String(),
		"application_id": app.ID.String(),
	}, priority)

	return app, nil
}

func (s *ApplicationService) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]domain.JobApplication, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByWorker(ctx, workerID, limit, offset)
}

// UnreadCount reports pending applications for the user's jobs, making the
// service an unread aggregator source.
func (s *ApplicationService) UnreadCount(ctx context.Context, ownerID uuid.UUID) (int, error) {
	return s.repo.PendingCount(ctx, ownerID)
}

func (s *ApplicationService) Name() string { return "applications" }

// notify dispatches fire-and-forget: errors are logged, never propagated.
func (s *ApplicationService) notify(ctx context.Context, kind notifdomain.Kind, recipient, sender uuid.UUID, data notifdomain.ContextMap, priority ...notifdomain.Priority) {
	p := notifdomain.PriorityNormal
	if len(priority) > 0 {
		p = priority[0]
	}
	senderID := sender
	_, err := s.dispatcher.Dispatch(ctx, notifapp.DispatchInput{
		Kind:      kind,
		Recipient: recipient,
		Sender:    &senderID,
		Context:   data,
		Priority:  p,
	})
	if err != nil {
		s.logger.Warn("application notification failed",
			"kind", kind, "recipient", recipient, "error", err)
	}
}
