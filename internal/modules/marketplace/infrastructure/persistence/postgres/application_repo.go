package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/workhive/notify/internal/modules/marketplace/domain"
)

type PgApplicationRepository struct {
	db *sqlx.DB
}

func NewPgApplicationRepository(db *sqlx.DB) *PgApplicationRepository {
	return &PgApplicationRepository{db: db}
}

func (r *PgApplicationRepository) Create(ctx context.Context, app *domain.JobApplication) error {
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO job_applications (id, job_id, job_title, worker_id, worker_name, owner_id, status, created_at, decided_at)
		VALUES (:id, :job_id, :job_title, :worker_id, :worker_name, :owner_id, :status, :created_at, :decided_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, app)
	return err
}

func (r *PgApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	var app domain.JobApplication
	err := r.db.GetContext(ctx, &app, `SELECT * FROM job_applications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *PgApplicationRepository) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]domain.JobApplication, error) {
	query := `
		SELECT * FROM job_applications
		WHERE worker_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var apps []domain.JobApplication
	err := r.db.SelectContext(ctx, &apps, query, workerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateStatus guards on status = 'pending' so a double-submitted decision
// fails instead of silently overwriting the first one.
func (r *PgApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus, decidedAt time.Time) error {
	query := `
		UPDATE job_applications
		SET status = $2, decided_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	res, err := r.db.ExecContext(ctx, query, id, status, decidedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAlreadyDecided
	}
	return nil
}

func (r *PgApplicationRepository) PendingCount(ctx context.Context, ownerID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM job_applications
		WHERE owner_id = $1 AND status = 'pending'
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, ownerID)
	return count, err
}
