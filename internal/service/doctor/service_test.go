package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

func seedDoctor(t *testing.T, repos *repository.Repositories, email, specialization string, active bool) *model.Doctor {
	t.Helper()
	d := &model.Doctor{
		Name:           "Dr. " + email,
		Email:          email,
		Specialization: specialization,
		Fees:           300,
		FixedSlots:     []string{"10:00", "12:00"},
		IsActive:       active,
		Available:      true,
	}
	require.NoError(t, repos.Doctors.Create(context.Background(), d))
	return d
}

func TestListHidesInactiveDoctors(t *testing.T) {
	repos := memory.New()
	svc := NewService(repos, logger.Nop())
	seedDoctor(t, repos, "a@example.com", "Neurologist", true)
	seedDoctor(t, repos, "b@example.com", "Neurologist", false)
	seedDoctor(t, repos, "c@example.com", "Pediatrician", true)

	public, err := svc.List(context.Background(), "neurologist", false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "a@example.com", public[0].Email)

	all, err := svc.List(context.Background(), "", true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestToggleAvailabilityAndSchedule(t *testing.T) {
	repos := memory.New()
	svc := NewService(repos, logger.Nop())
	ctx := context.Background()
	d := seedDoctor(t, repos, "a@example.com", "Neurologist", true)
	require.NoError(t, repos.Doctors.ReserveSlot(ctx, d.ID, model.BookedSlot{Date: "2024-06-01", Time: "10:00"}))

	toggled, err := svc.ToggleAvailability(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Available)

	updated, err := svc.UpdateSchedule(ctx, d.ID, model.UpdateScheduleRequest{FixedSlots: []string{"16:00", "09:30"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30", "16:00"}, updated.FixedSlots)

	stored, err := repos.Doctors.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, stored.BookedSlots, 1, "schedule edits keep existing reservations")

	_, err = svc.UpdateSchedule(ctx, d.ID, model.UpdateScheduleRequest{FixedSlots: []string{"10:00", "10:00"}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestUpdateProfilePartial(t *testing.T) {
	repos := memory.New()
	svc := NewService(repos, logger.Nop())
	d := seedDoctor(t, repos, "a@example.com", "Neurologist", true)

	fees := 750.0
	about := "Headaches and more"
	updated, err := svc.UpdateProfile(context.Background(), d.ID, model.UpdateDoctorRequest{Fees: &fees, About: &about})
	require.NoError(t, err)
	assert.Equal(t, 750.0, updated.Fees)
	assert.Equal(t, "Headaches and more", updated.About)
	assert.Equal(t, "Neurologist", updated.Specialization)
}

func TestSetActive(t *testing.T) {
	repos := memory.New()
	svc := NewService(repos, logger.Nop())
	d := seedDoctor(t, repos, "a@example.com", "Neurologist", true)

	updated, err := svc.SetActive(context.Background(), d.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.SetActive(context.Background(), "not-an-id", true)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestDashboard(t *testing.T) {
	repos := memory.New()
	svc := NewService(repos, logger.Nop())
	ctx := context.Background()
	d := seedDoctor(t, repos, "a@example.com", "Neurologist", true)

	apts := []*model.Appointment{
		{DoctorID: d.ID, PatientID: "p1", Amount: 300, Status: model.AppointmentStatusCompleted, PaymentStatus: model.PaymentStatusPaid},
		{DoctorID: d.ID, PatientID: "p1", Amount: 300, Status: model.AppointmentStatusPending, PaymentStatus: model.PaymentStatusPending},
		{DoctorID: d.ID, PatientID: "p2", Amount: 300, Status: model.AppointmentStatusCancelled, PaymentStatus: model.PaymentStatusRefunded},
	}
	for _, apt := range apts {
		require.NoError(t, repos.Appointments.Create(ctx, apt))
	}

	dash, err := svc.Dashboard(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, dash.Appointments)
	assert.Equal(t, 2, dash.Patients)
	assert.Equal(t, 300.0, dash.Earnings)
	assert.Equal(t, 1, dash.Pending)
	assert.Equal(t, 1, dash.Completed)
	assert.Equal(t, 1, dash.Cancelled)
	assert.Len(t, dash.Latest, 3)
}
