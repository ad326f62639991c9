package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

const AppointmentCleanupJob = "appointment_cleanup"

type AppointmentCleanupConfig struct {
	// Retention is the minimum age, measured from the last update, before an
	// appointment in a status is deleted. Statuses absent from the map are kept.
	Retention     map[model.AppointmentStatus]time.Duration
	DeleteTimeout time.Duration
	RetryDelay    time.Duration
}

type AppointmentCleanupWorker struct {
	repo    repository.AppointmentRepository
	config  AppointmentCleanupConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

func NewAppointmentCleanupWorker(repo repository.AppointmentRepository, config AppointmentCleanupConfig, log *logger.Logger, m *metrics.Metrics) *AppointmentCleanupWorker {
	if config.DeleteTimeout <= 0 {
		config.DeleteTimeout = 30 * time.Second
	}
	return &AppointmentCleanupWorker{
		repo:    repo,
		config:  config,
		logger:  log,
		metrics: m,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// RetentionFromConfig converts the status-keyed config map, rejecting
// unknown statuses.
func RetentionFromConfig(raw map[string]time.Duration) (map[model.AppointmentStatus]time.Duration, error) {
	out := make(map[model.AppointmentStatus]time.Duration, len(raw))
	for k, v := range raw {
		status := model.AppointmentStatus(k)
		switch status {
		case model.AppointmentStatusPending, model.AppointmentStatusConfirmed,
			model.AppointmentStatusCompleted, model.AppointmentStatusCancelled:
		default:
			return nil, fmt.Errorf("unknown appointment status %q in retention", k)
		}
		if v < 0 {
			return nil, fmt.Errorf("negative retention for %q", k)
		}
		out[status] = v
	}
	return out, nil
}

func (w *AppointmentCleanupWorker) Name() string { return AppointmentCleanupJob }

// Run deletes expired appointments. A storage failure is retried once after
// RetryDelay; the second failure is returned.
func (w *AppointmentCleanupWorker) Run(ctx context.Context) error {
	start := time.Now()
	deleted, err := w.cleanup(ctx)
	if err != nil && w.config.RetryDelay > 0 {
		w.logger.Warn("Appointment cleanup failed, retrying",
			"error", err.Error(), "retry_in", w.config.RetryDelay.String())
		if sleepErr := w.sleep(ctx, w.config.RetryDelay); sleepErr != nil {
			observe(w.metrics, w.logger, AppointmentCleanupJob, start, deleted, err)
			return err
		}
		var more int64
		more, err = w.cleanup(ctx)
		deleted += more
	}
	observe(w.metrics, w.logger, AppointmentCleanupJob, start, deleted, err)
	return err
}

func (w *AppointmentCleanupWorker) cleanup(ctx context.Context) (int64, error) {
	statuses := make([]string, 0, len(w.config.Retention))
	for s := range w.config.Retention {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	now := w.now()
	var total int64
	for _, s := range statuses {
		status := model.AppointmentStatus(s)
		cutoff := now.Add(-w.config.Retention[status])

		n, err := w.deleteStatus(ctx, status, cutoff)
		total += n
		if err != nil {
			return total, fmt.Errorf("delete %s appointments: %w", status, err)
		}
	}
	return total, nil
}

func (w *AppointmentCleanupWorker) deleteStatus(ctx context.Context, status model.AppointmentStatus, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, w.config.DeleteTimeout)
	defer cancel()
	return w.repo.DeleteByStatus(ctx, status, cutoff)
}
