package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

const ReminderCleanupJob = "reminder_cleanup"

// ReminderCleanupWorker expires reminders ttl after they were created.
type ReminderCleanupWorker struct {
	repo    repository.ReminderRepository
	ttl     time.Duration
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewReminderCleanupWorker(repo repository.ReminderRepository, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *ReminderCleanupWorker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReminderCleanupWorker{
		repo:    repo,
		ttl:     ttl,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

func (w *ReminderCleanupWorker) Name() string { return ReminderCleanupJob }

func (w *ReminderCleanupWorker) Run(ctx context.Context) error {
	start := time.Now()
	deleted, err := w.repo.DeleteCreatedBefore(ctx, w.now().Add(-w.ttl))
	observe(w.metrics, w.logger, ReminderCleanupJob, start, deleted, err)
	return err
}
