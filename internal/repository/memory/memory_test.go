package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

func TestDoctorReserveSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorRepository()

	doc := &model.Doctor{Name: "Dr. Rao", Email: "rao@example.com", FixedSlots: model.DefaultFixedSlots}
	require.NoError(t, repo.Create(ctx, doc))

	slot := model.BookedSlot{Date: "2024-06-01", Time: "10:00"}
	require.NoError(t, repo.ReserveSlot(ctx, doc.ID, slot))
	assert.ErrorIs(t, repo.ReserveSlot(ctx, doc.ID, slot), repository.ErrSlotTaken)

	require.NoError(t, repo.ReserveSlot(ctx, doc.ID, model.BookedSlot{Date: "2024-06-01", Time: "12:00"}))

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "12:00"}, got.BookedTimes("2024-06-01"))

	require.NoError(t, repo.ReleaseSlot(ctx, doc.ID, slot))
	got, err = repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"12:00"}, got.BookedTimes("2024-06-01"))
}

func TestDoctorReserveSlotConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorRepository()
	doc := &model.Doctor{Email: "c@example.com"}
	require.NoError(t, repo.Create(ctx, doc))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.ReserveSlot(ctx, doc.ID, model.BookedSlot{Date: "2024-06-01", Time: "14:00"}) == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestDoctorUpdateKeepsBookedSlots(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorRepository()
	doc := &model.Doctor{Email: "k@example.com"}
	require.NoError(t, repo.Create(ctx, doc))
	require.NoError(t, repo.ReserveSlot(ctx, doc.ID, model.BookedSlot{Date: "2024-06-01", Time: "10:00"}))

	doc.Name = "Renamed"
	doc.BookedSlots = nil
	require.NoError(t, repo.Update(ctx, doc))

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.BookedSlots, 1)
}

func TestDuplicateEmailAndBadID(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository()
	require.NoError(t, repo.Create(ctx, &model.Patient{Email: "p@example.com"}))
	assert.ErrorIs(t, repo.Create(ctx, &model.Patient{Email: " P@example.com"}), repository.ErrDuplicate)

	_, err := repo.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, repository.ErrInvalidID)
}

func TestAppointmentUpdateIfStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	apt := &model.Appointment{DoctorID: "d", PatientID: "p", Status: model.AppointmentStatusPending}
	require.NoError(t, repo.Create(ctx, apt))

	first := *apt
	first.Status = model.AppointmentStatusConfirmed
	require.NoError(t, repo.UpdateIfStatus(ctx, &first, model.AppointmentStatusPending))

	second := *apt
	second.Status = model.AppointmentStatusCancelled
	assert.ErrorIs(t, repo.UpdateIfStatus(ctx, &second, model.AppointmentStatusPending), repository.ErrStatusChanged)
}

func TestAppointmentDeleteByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	for _, s := range []model.AppointmentStatus{model.AppointmentStatusCancelled, model.AppointmentStatusCompleted} {
		require.NoError(t, repo.Create(ctx, &model.Appointment{Status: s}))
	}

	n, err := repo.DeleteByStatus(ctx, model.AppointmentStatusCancelled, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteByStatus(ctx, model.AppointmentStatusCancelled, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.List(ctx, model.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, model.AppointmentStatusCompleted, left[0].Status)
}

func TestAppointmentUpdateCall(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	apt := &model.Appointment{}
	require.NoError(t, repo.Create(ctx, apt))

	offer, cand, by := `{"sdp":"x"}`, `{"candidate":"c"}`, model.RoleDoctor
	_, err := repo.UpdateCall(ctx, apt.ID, repository.CallUpdate{Offer: &offer})
	require.NoError(t, err)
	_, err = repo.UpdateCall(ctx, apt.ID, repository.CallUpdate{AddCandidate: &cand})
	require.NoError(t, err)
	got, err := repo.UpdateCall(ctx, apt.ID, repository.CallUpdate{EndedBy: &by})
	require.NoError(t, err)

	assert.Equal(t, offer, got.Offer)
	assert.Equal(t, []string{cand}, got.ICECandidates)
	assert.True(t, got.Ended)
	assert.Equal(t, model.RoleDoctor, got.EndedBy)
}

func TestResetCodeStore(t *testing.T) {
	ctx := context.Background()
	store := NewResetCodeStore()

	require.NoError(t, store.Save(ctx, "k", "digest", time.Minute))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "digest", got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResetCodeStoreCountsFailures(t *testing.T) {
	ctx := context.Background()
	store := NewResetCodeStore()

	_, err := store.Fail(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Save(ctx, "k", "digest", time.Minute))
	for want := 1; want <= 3; want++ {
		n, err := store.Fail(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// a new code starts over
	require.NoError(t, store.Save(ctx, "k", "digest-2", time.Minute))
	n, err := store.Fail(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
