package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/messaging"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

var errStorage = errors.New("storage unavailable")

// flakyAppointments fails the first failures calls to DeleteByStatus.
type flakyAppointments struct {
	repository.AppointmentRepository
	failures int
	calls    int
}

func (f *flakyAppointments) DeleteByStatus(ctx context.Context, status model.AppointmentStatus, cutoff time.Time) (int64, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return 0, errStorage
	}
	return f.AppointmentRepository.DeleteByStatus(ctx, status, cutoff)
}

func seedAppointments(t *testing.T, repo repository.AppointmentRepository) {
	t.Helper()
	for _, s := range []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
	} {
		require.NoError(t, repo.Create(context.Background(), &model.Appointment{Status: s}))
	}
}

func defaultRetention() map[model.AppointmentStatus]time.Duration {
	return map[model.AppointmentStatus]time.Duration{
		model.AppointmentStatusPending:   0,
		model.AppointmentStatusConfirmed: 0,
		model.AppointmentStatusCompleted: 0,
		model.AppointmentStatusCancelled: 24 * time.Hour,
	}
}

func newCleanup(repo repository.AppointmentRepository, m *metrics.Metrics) (*AppointmentCleanupWorker, *[]time.Duration) {
	w := NewAppointmentCleanupWorker(repo, AppointmentCleanupConfig{
		Retention:  defaultRetention(),
		RetryDelay: 5 * time.Minute,
	}, logger.Nop(), m)
	w.now = func() time.Time { return time.Now().Add(time.Minute) }
	var slept []time.Duration
	w.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return w, &slept
}

func TestAppointmentCleanupRetention(t *testing.T) {
	repo := memory.NewAppointmentRepository()
	seedAppointments(t, repo)
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w, slept := newCleanup(repo, m)

	require.NoError(t, w.Run(context.Background()))
	assert.Empty(t, *slept)

	left, err := repo.List(context.Background(), model.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1, "recently cancelled appointments are kept")
	assert.Equal(t, model.AppointmentStatusCancelled, left[0].Status)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.JobDeleted.WithLabelValues(AppointmentCleanupJob)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(AppointmentCleanupJob, "success")))
}

func TestAppointmentCleanupRetriesOnce(t *testing.T) {
	flaky := &flakyAppointments{AppointmentRepository: memory.NewAppointmentRepository(), failures: 1}
	seedAppointments(t, flaky)
	w, slept := newCleanup(flaky, metrics.NewNop())

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []time.Duration{5 * time.Minute}, *slept)

	left, err := flaky.List(context.Background(), model.AppointmentFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestAppointmentCleanupGivesUpAfterRetry(t *testing.T) {
	flaky := &flakyAppointments{AppointmentRepository: memory.NewAppointmentRepository(), failures: 10}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w, slept := newCleanup(flaky, m)

	err := w.Run(context.Background())
	assert.ErrorIs(t, err, errStorage)
	assert.Len(t, *slept, 1)
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(AppointmentCleanupJob, "failure")))
}

func TestAppointmentCleanupIgnoresUnlistedStatuses(t *testing.T) {
	repo := memory.NewAppointmentRepository()
	seedAppointments(t, repo)
	w, _ := newCleanup(repo, metrics.NewNop())
	w.config.Retention = map[model.AppointmentStatus]time.Duration{model.AppointmentStatusCompleted: 0}

	require.NoError(t, w.Run(context.Background()))
	left, err := repo.List(context.Background(), model.AppointmentFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 3)
}

func TestRetentionFromConfig(t *testing.T) {
	got, err := RetentionFromConfig(map[string]time.Duration{"cancelled": 24 * time.Hour, "completed": 0})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, got[model.AppointmentStatusCancelled])

	_, err = RetentionFromConfig(map[string]time.Duration{"archived": time.Hour})
	assert.Error(t, err)

	_, err = RetentionFromConfig(map[string]time.Duration{"pending": -time.Hour})
	assert.Error(t, err)
}

func TestReminderCleanup(t *testing.T) {
	repo := memory.NewReminderRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Reminder{PatientID: "p1", MedicineName: "Metformin", Dosage: "500mg", Time: "08:00"}))

	w := NewReminderCleanupWorker(repo, 5*time.Minute, logger.Nop(), metrics.NewNop())
	require.NoError(t, w.Run(ctx))
	list, err := repo.ListByPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, list, 1, "fresh reminders survive")

	w.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	require.NoError(t, w.Run(ctx))
	list, err = repo.ListByPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

type countingJob struct {
	name string
	err  error
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRunOnceRunsEveryJob(t *testing.T) {
	failing := &countingJob{name: "a", err: errStorage}
	ok := &countingJob{name: "b"}

	err := RunOnce(context.Background(), failing, ok)
	assert.ErrorIs(t, err, errStorage)
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, ok.runs)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logger.Nop())
	assert.Error(t, s.Add("not a spec", &countingJob{name: "x"}))
	require.NoError(t, s.Add("@every 1h", &countingJob{name: "y"}))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

type chanBroker struct {
	messaging.NopBroker
	ch chan []byte
}

func (b chanBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return b.ch, nil
}

func TestEventAuditorDrainsUntilClosed(t *testing.T) {
	ch := make(chan []byte, 2)
	ch <- []byte(`{"type":"appointment.booked","payload":{"id":"a1","docId":"d1","userId":"p1","status":"pending"}}`)
	ch <- []byte(`not json`)
	close(ch)

	a := NewEventAuditor(chanBroker{ch: ch}, logger.Nop())
	assert.NoError(t, a.Run(context.Background()))
	assert.Empty(t, ch)
}
