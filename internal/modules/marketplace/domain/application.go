package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// JobApplication is a worker's application to a posted job. The job title
// and worker name are denormalized onto the row because the notification
// factory needs them at decision time and the owning job/profile records
// live in an external system.
type JobApplication struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	JobID      uuid.UUID         `json:"job_id" db:"job_id"`
	JobTitle   string            `json:"job_title" db:"job_title"`
	WorkerID   uuid.UUID         `json:"worker_id" db:"worker_id"`
	WorkerName string            `json:"worker_name" db:"worker_name"`
	OwnerID    uuid.UUID         `json:"owner_id" db:"owner_id"`
	Status     ApplicationStatus `json:"status" db:"status"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	DecidedAt  *time.Time        `json:"decided_at,omitempty" db:"decided_at"`
}

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyDecided      = errors.New("application has already been decided")
	ErrNotJobOwner         = errors.New("only the job owner can decide an application")
	ErrOwnJob              = errors.New("cannot apply to your own job")
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *JobApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*JobApplication, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]JobApplication, error)

	// UpdateStatus transitions a pending application and stamps decided_at.
	// Returns ErrAlreadyDecided when the row is no longer pending.
	UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus, decidedAt time.Time) error

	// PendingCount counts undecided applications across the owner's jobs;
	// it feeds the unread aggregator.
	PendingCount(ctx context.Context, ownerID uuid.UUID) (int, error)
}
