package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

type recordedEvents struct {
	mu    sync.Mutex
	types []string
}

func (r *recordedEvents) Emit(_ context.Context, eventType string, _ *model.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
}

type fixture struct {
	svc     *Service
	repos   *repository.Repositories
	events  *recordedEvents
	doctor  *model.Doctor
	patient *model.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.New()
	events := &recordedEvents{}

	doctor := &model.Doctor{
		Name:       "Dr. Mehta",
		Email:      "mehta@example.com",
		Fees:       500,
		FixedSlots: []string{"10:00", "12:00", "14:00", "16:00"},
		IsActive:   true,
		Available:  true,
	}
	require.NoError(t, repos.Doctors.Create(ctx, doctor))

	patient := &model.Patient{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, repos.Patients.Create(ctx, patient))

	svc := NewService(repos, events, metrics.NewNop(), logger.Nop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local) }

	return &fixture{svc: svc, repos: repos, events: events, doctor: doctor, patient: patient}
}

func (f *fixture) book(slotTime string) (*model.Appointment, error) {
	return f.svc.BookAppointment(context.Background(), f.patient.ID, model.BookAppointmentRequest{
		DoctorID: f.doctor.ID,
		SlotDate: "2024-06-01",
		SlotTime: slotTime,
	})
}

func (f *fixture) patientActor() model.Actor {
	return model.Actor{ID: f.patient.ID, Role: model.RolePatient}
}

func (f *fixture) doctorActor() model.Actor {
	return model.Actor{ID: f.doctor.ID, Role: model.RoleDoctor}
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.book("14:00")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, model.PaymentStatusPending, apt.PaymentStatus)
	assert.Equal(t, 500.0, apt.Amount)
	assert.Equal(t, "Dr. Mehta", apt.DoctorName)

	status, err := f.svc.GetAvailability(ctx, f.doctor.ID, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "12:00", "16:00"}, status.AvailableSlots)

	fetched, err := f.svc.GetAppointment(ctx, f.patientActor(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, f.doctor.ID, fetched.DoctorID)
	assert.Equal(t, f.patient.ID, fetched.PatientID)
	assert.Equal(t, "2024-06-01", fetched.SlotDate)
	assert.Equal(t, "14:00", fetched.SlotTime)

	assert.Equal(t, []string{"appointment.booked"}, f.events.types)
}

func TestBookingSameSlotTwice(t *testing.T) {
	f := newFixture(t)

	_, err := f.book("10:00")
	require.NoError(t, err)

	_, err = f.book("10:00")
	assertCode(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "slot not available")
}

func TestBookingTwoTimesSameDay(t *testing.T) {
	f := newFixture(t)

	_, err := f.book("10:00")
	require.NoError(t, err)
	_, err = f.book("12:00")
	require.NoError(t, err)

	status, err := f.svc.GetAvailability(context.Background(), f.doctor.ID, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"14:00", "16:00"}, status.AvailableSlots)
	assert.Equal(t, 2, status.BookedCount)
}

func TestBookingConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.book("16:00")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		if err == nil {
			ok++
		} else if apperrors.HasCode(err, apperrors.ErrConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)

	apts, err := f.repos.Appointments.List(context.Background(), model.AppointmentFilter{})
	require.NoError(t, err)
	assert.Len(t, apts, 1)
}

func TestBookingRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fixture) model.BookAppointmentRequest
		code  apperrors.ErrorCode
	}{
		{"bad date", func(f *fixture) model.BookAppointmentRequest {
			return model.BookAppointmentRequest{DoctorID: f.doctor.ID, SlotDate: "01/06/2024", SlotTime: "10:00"}
		}, apperrors.ErrBadRequest},
		{"missing fields", func(f *fixture) model.BookAppointmentRequest {
			return model.BookAppointmentRequest{DoctorID: f.doctor.ID}
		}, apperrors.ErrBadRequest},
		{"malformed doctor id", func(f *fixture) model.BookAppointmentRequest {
			return model.BookAppointmentRequest{DoctorID: "nope", SlotDate: "2024-06-01", SlotTime: "10:00"}
		}, apperrors.ErrBadRequest},
		{"unknown doctor", func(f *fixture) model.BookAppointmentRequest {
			return model.BookAppointmentRequest{DoctorID: "6c1f4f38-8b4a-4a0e-9d55-4f7e3c2a1b00", SlotDate: "2024-06-01", SlotTime: "10:00"}
		}, apperrors.ErrNotFound},
		{"slot not offered", func(f *fixture) model.BookAppointmentRequest {
			return model.BookAppointmentRequest{DoctorID: f.doctor.ID, SlotDate: "2024-06-01", SlotTime: "11:00"}
		}, apperrors.ErrBadRequest},
		{"doctor unavailable", func(f *fixture) model.BookAppointmentRequest {
			f.doctor.Available = false
			require.NoError(t, f.repos.Doctors.Update(context.Background(), f.doctor))
			return model.BookAppointmentRequest{DoctorID: f.doctor.ID, SlotDate: "2024-06-01", SlotTime: "10:00"}
		}, apperrors.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.setup(f)
			_, err := f.svc.BookAppointment(context.Background(), f.patient.ID, req)
			assertCode(t, err, tt.code)
		})
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.book("12:00")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, f.patientActor(), apt.ID, "travel")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, model.RolePatient, cancelled.CancelledBy)

	_, err = f.svc.Cancel(ctx, f.patientActor(), apt.ID, "again")
	assertCode(t, err, apperrors.ErrBadRequest)

	_, err = f.book("12:00")
	assert.NoError(t, err)
}

func TestCancelPaidAppointmentRefunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.book("10:00")
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.patientActor(), apt.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, f.doctorActor(), apt.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, cancelled.PaymentStatus)
	assert.NotNil(t, cancelled.RefundDate)
	assert.Equal(t, 500.0, cancelled.RefundAmount)
}

func TestCompleteRequiresAssignedDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.book("16:00")
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.doctorActor(), apt.ID)
	require.NoError(t, err)

	other := model.Actor{ID: "6c1f4f38-8b4a-4a0e-9d55-4f7e3c2a1b01", Role: model.RoleDoctor}
	_, err = f.svc.Complete(ctx, other, apt.ID)
	assertCode(t, err, apperrors.ErrForbidden)

	done, err := f.svc.Complete(ctx, f.doctorActor(), apt.ID)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
}

func TestConfirmIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.book("10:00")
	require.NoError(t, err)

	first, err := f.svc.Confirm(ctx, f.doctorActor(), apt.ID)
	require.NoError(t, err)
	second, err := f.svc.Confirm(ctx, f.doctorActor(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ConfirmedAt, second.ConfirmedAt)
	assert.Equal(t, []string{"appointment.booked", "appointment.confirmed"}, f.events.types)
}

func TestGetAppointmentHiddenFromStrangers(t *testing.T) {
	f := newFixture(t)

	apt, err := f.book("10:00")
	require.NoError(t, err)

	stranger := model.Actor{ID: "someone", Role: model.RolePatient}
	_, err = f.svc.GetAppointment(context.Background(), stranger, apt.ID)
	assertCode(t, err, apperrors.ErrForbidden)
}

func TestAvailabilityErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetAvailability(ctx, f.doctor.ID, "June 1")
	assertCode(t, err, apperrors.ErrBadRequest)

	_, err = f.svc.GetAvailability(ctx, "bad", "2024-06-01")
	assertCode(t, err, apperrors.ErrBadRequest)

	_, err = f.svc.GetAvailability(ctx, "6c1f4f38-8b4a-4a0e-9d55-4f7e3c2a1b00", "2024-06-01")
	assertCode(t, err, apperrors.ErrNotFound)
}

func TestSignaling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.book("14:00")
	require.NoError(t, err)

	_, err = f.svc.SetOffer(ctx, f.doctorActor(), apt.ID, `{"type":"offer","sdp":"v=0"}`)
	require.NoError(t, err)
	_, err = f.svc.SetAnswer(ctx, f.patientActor(), apt.ID, `{"type":"answer","sdp":"v=0"}`)
	require.NoError(t, err)
	_, err = f.svc.AddICECandidate(ctx, f.patientActor(), apt.ID, `{"candidate":"a"}`)
	require.NoError(t, err)

	_, err = f.svc.SetOffer(ctx, f.doctorActor(), apt.ID, "not json")
	assertCode(t, err, apperrors.ErrBadRequest)

	stranger := model.Actor{ID: "x", Role: model.RolePatient}
	_, err = f.svc.GetCall(ctx, stranger, apt.ID)
	assertCode(t, err, apperrors.ErrForbidden)

	call, err := f.svc.EndCall(ctx, f.patientActor(), apt.ID)
	require.NoError(t, err)
	assert.True(t, call.Ended)
	assert.Equal(t, model.RolePatient, call.EndedBy)
	assert.Equal(t, `{"type":"offer","sdp":"v=0"}`, call.Offer)
	assert.Len(t, call.ICECandidates, 1)
}

func TestCanSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.book("16:00")
	require.NoError(t, err)

	stranger := model.Actor{ID: "6c1f4f38-8b4a-4a0e-9d55-4f7e3c2a1b00", Role: model.RolePatient}
	admin := model.Actor{ID: "admin-1", Role: model.RoleAdmin}
	// a doctor token carrying a patient's id must not open the patient topic
	impostor := model.Actor{ID: f.patient.ID, Role: model.RoleDoctor}

	tests := []struct {
		name  string
		actor model.Actor
		topic string
		want  bool
	}{
		{"patient own topic", f.patientActor(), "patient:" + f.patient.ID, true},
		{"patient other patient", stranger, "patient:" + f.patient.ID, false},
		{"patient doctor topic", f.patientActor(), "doctor:" + f.doctor.ID, false},
		{"doctor own topic", f.doctorActor(), "doctor:" + f.doctor.ID, true},
		{"role must match topic", impostor, "patient:" + f.patient.ID, false},
		{"patient participant", f.patientActor(), "appointment:" + apt.ID, true},
		{"doctor participant", f.doctorActor(), "appointment:" + apt.ID, true},
		{"stranger appointment", stranger, "appointment:" + apt.ID, false},
		{"unknown appointment", f.patientActor(), "appointment:" + stranger.ID, false},
		{"admin anything", admin, "patient:" + f.patient.ID, true},
		{"unknown topic", f.patientActor(), "everything", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.svc.CanSubscribe(ctx, tt.actor, tt.topic))
		})
	}
}
