// Package worker runs the scheduled cleanup jobs.
package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// observe records the outcome of one job run.
func observe(m *metrics.Metrics, log *logger.Logger, job string, start time.Time, deleted int64, err error) {
	m.JobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
	m.JobDeleted.WithLabelValues(job).Add(float64(deleted))
	if err != nil {
		m.JobRuns.WithLabelValues(job, "failure").Inc()
		log.Error(err, "Cleanup job failed", "job", job, "deleted", deleted)
		return
	}
	m.JobRuns.WithLabelValues(job, "success").Inc()
	if deleted > 0 {
		log.Info("Cleanup job finished", "job", job, "deleted", deleted)
	} else {
		log.Debug("Cleanup job finished", "job", job, "deleted", deleted)
	}
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
