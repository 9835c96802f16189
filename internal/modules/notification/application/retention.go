package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/workhive/notify/internal/modules/notification/domain"
)

// RetentionPurger bounds notification growth. Read notifications older than
// maxAge are deleted on each sweep; unread notifications are kept until the
// user deals with them.
type RetentionPurger struct {
	repo     domain.NotificationRepository
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func NewRetentionPurger(repo domain.NotificationRepository, maxAge, interval time.Duration, logger *slog.Logger) *RetentionPurger {
	if maxAge <= 0 {
		maxAge = 90 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RetentionPurger{repo: repo, maxAge: maxAge, interval: interval, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (p *RetentionPurger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			p.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *RetentionPurger) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-p.maxAge)
	deleted, err := p.repo.PurgeReadOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		purgedTotal.Add(float64(deleted))
		p.logger.Info("retention sweep removed read notifications", "deleted", deleted, "cutoff", cutoff)
	}
}
