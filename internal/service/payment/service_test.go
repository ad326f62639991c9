package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	"github.com/jwalitptl/medconnect-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, *model.Appointment) {}

func setup(t *testing.T) (*Service, *repository.Repositories, *model.Appointment) {
	t.Helper()
	ctx := context.Background()
	repos := memory.New()

	doctor := &model.Doctor{Name: "Dr. Iyer", Email: "iyer@example.com", Fees: 400,
		FixedSlots: []string{"10:00"}, IsActive: true, Available: true}
	require.NoError(t, repos.Doctors.Create(ctx, doctor))
	patient := &model.Patient{Name: "Ravi", Email: "ravi@example.com"}
	require.NoError(t, repos.Patients.Create(ctx, patient))

	apts := appointment.NewService(repos, nopEmitter{}, metrics.NewNop(), logger.Nop())
	apt, err := apts.BookAppointment(ctx, patient.ID, model.BookAppointmentRequest{
		DoctorID: doctor.ID, SlotDate: "2099-01-01", SlotTime: "10:00",
	})
	require.NoError(t, err)

	return NewService(repos, apts, logger.Nop()), repos, apt
}

func TestCreatePaymentConfirmsAppointment(t *testing.T) {
	svc, repos, apt := setup(t)
	ctx := context.Background()
	patient := model.Actor{ID: apt.PatientID, Role: model.RolePatient}

	p, err := svc.Create(ctx, patient, model.CreatePaymentRequest{AppointmentID: apt.ID, Method: "upi"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, p.Status)
	assert.Equal(t, 400.0, p.Amount)
	assert.Equal(t, "INR", p.Currency)
	assert.NotEmpty(t, p.TransactionID)
	assert.NotNil(t, p.PaidAt)

	stored, err := repos.Appointments.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, stored.Status)
	assert.Equal(t, model.PaymentStatusPaid, stored.PaymentStatus)

	_, err = svc.Create(ctx, patient, model.CreatePaymentRequest{AppointmentID: apt.ID, Method: "upi"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrConflict))

	mine, err := svc.ListMine(ctx, patient)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCreatePaymentForSomeoneElse(t *testing.T) {
	svc, _, apt := setup(t)

	_, err := svc.Create(context.Background(), model.Actor{ID: "intruder", Role: model.RolePatient},
		model.CreatePaymentRequest{AppointmentID: apt.ID, Method: "card"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))
}

func TestGetPaymentVisibility(t *testing.T) {
	svc, _, apt := setup(t)
	ctx := context.Background()
	patient := model.Actor{ID: apt.PatientID, Role: model.RolePatient}

	p, err := svc.Create(ctx, patient, model.CreatePaymentRequest{AppointmentID: apt.ID, Method: "cash"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, model.Actor{ID: apt.DoctorID, Role: model.RoleDoctor}, p.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, model.Actor{ID: "other", Role: model.RolePatient}, p.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))
}
