// Package bootstrap opens the backing stores and builds the cleanup jobs
// shared by the api and worker binaries.
package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jwalitptl/medconnect-api/internal/config"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	"github.com/jwalitptl/medconnect-api/internal/repository/mongo"
	"github.com/jwalitptl/medconnect-api/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/medconnect-api/internal/repository/redis"
	"github.com/jwalitptl/medconnect-api/internal/worker"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/messaging"
	redisbroker "github.com/jwalitptl/medconnect-api/pkg/messaging/redis"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

// OpenRepositories connects the configured storage driver.
func OpenRepositories(ctx context.Context, cfg config.DatabaseConfig) (*repository.Repositories, error) {
	switch cfg.Driver {
	case "mongo":
		return mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return postgres.New(db), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Redis bundles the optional Redis-backed components. Without a URL they
// fall back to in-process implementations.
type Redis struct {
	Client     *goredis.Client
	Broker     messaging.Broker
	ResetCodes repository.ResetCodeStore
}

func OpenRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Redis, error) {
	if cfg.URL == "" {
		log.Warn("Redis not configured, using in-process broker and reset code store")
		return &Redis{
			Broker:     messaging.NopBroker{},
			ResetCodes: memory.NewResetCodeStore(),
		}, nil
	}

	client, err := redisbroker.NewClient(ctx, redisbroker.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
	if err != nil {
		return nil, err
	}
	return &Redis{
		Client:     client,
		Broker:     redisbroker.NewRedisBroker(client, &log.ZL),
		ResetCodes: redisrepo.NewResetCodeStore(client),
	}, nil
}

// Ping is nil when Redis is not configured.
func (r *Redis) Ping() func(ctx context.Context) error {
	if r.Client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return r.Client.Ping(ctx).Err()
	}
}

func (r *Redis) Close() error {
	if err := r.Broker.Close(); err != nil {
		return err
	}
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// ScheduledJob pairs a job with its cron spec.
type ScheduledJob struct {
	Spec string
	Job  worker.Job
}

// CleanupJobs builds the appointment and reminder cleanup jobs from config.
func CleanupJobs(cfg config.JobsConfig, repos *repository.Repositories, log *logger.Logger, m *metrics.Metrics) ([]ScheduledJob, error) {
	retention, err := worker.RetentionFromConfig(cfg.Retention)
	if err != nil {
		return nil, err
	}
	jobLog := log.WithFields(map[string]interface{}{"component": "jobs"})
	return []ScheduledJob{
		{
			Spec: cfg.AppointmentCleanupSpec,
			Job: worker.NewAppointmentCleanupWorker(repos.Appointments, worker.AppointmentCleanupConfig{
				Retention:     retention,
				DeleteTimeout: cfg.DeleteTimeout,
				RetryDelay:    cfg.RetryDelay,
			}, jobLog, m),
		},
		{
			Spec: cfg.ReminderCleanupSpec,
			Job:  worker.NewReminderCleanupWorker(repos.Reminders, cfg.ReminderTTL, jobLog, m),
		},
	}, nil
}

// Schedule registers jobs on a new scheduler without starting it.
func Schedule(jobs []ScheduledJob, log *logger.Logger) (*worker.Scheduler, error) {
	s := worker.NewScheduler(log)
	for _, j := range jobs {
		if err := s.Add(j.Spec, j.Job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Jobs strips the specs, for one-shot runs.
func Jobs(scheduled []ScheduledJob) []worker.Job {
	out := make([]worker.Job, len(scheduled))
	for i, j := range scheduled {
		out[i] = j.Job
	}
	return out
}
