package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

// Scheduler runs jobs on cron specs. A run that is still going when its
// next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *logger.Logger
}

func NewScheduler(log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(log),
			cron.SkipIfStillRunning(log),
		)),
		ctx:    ctx,
		cancel: cancel,
		logger: log,
	}
}

func (s *Scheduler) Add(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		// Errors are already logged and counted by the job.
		_ = job.Run(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.logger.Info("Scheduled job", "job", job.Name(), "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for scheduled jobs to stop")
	}
}

// RunOnce runs each job in order and returns the first error.
func RunOnce(ctx context.Context, jobs ...Job) error {
	var first error
	for _, job := range jobs {
		if err := job.Run(ctx); err != nil && first == nil {
			first = fmt.Errorf("%s: %w", job.Name(), err)
		}
	}
	return first
}
