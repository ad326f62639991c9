package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	"github.com/jwalitptl/medconnect-api/internal/service/event"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

type Service struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	events       event.Emitter
	metrics      *metrics.Metrics
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(repos *repository.Repositories, events event.Emitter, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		doctors:      repos.Doctors,
		patients:     repos.Patients,
		appointments: repos.Appointments,
		events:       events,
		metrics:      m,
		logger:       log,
		now:          time.Now,
	}
}

func parseDate(date string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return apperrors.BadRequest("slotDate must be a date in YYYY-MM-DD format", err)
	}
	return nil
}

// GetAvailability reports the open slots of a doctor on date.
func (s *Service) GetAvailability(ctx context.Context, doctorID, date string) (*model.AvailabilityStatus, error) {
	if err := parseDate(date); err != nil {
		return nil, err
	}
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrInvalidID) {
			s.logger.WithContext(ctx).Error(err, "Failed to load doctor for availability", "doctor_id", doctorID)
		}
		return nil, service.RepoError("doctor", err)
	}
	status := ComputeAvailability(doctor, date)
	return &status, nil
}

// BookAppointment reserves the slot on the doctor and records a pending
// appointment for the patient.
func (s *Service) BookAppointment(ctx context.Context, patientID string, req model.BookAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.book(ctx, patientID, req)
	switch {
	case err == nil:
		s.metrics.Bookings.WithLabelValues("success").Inc()
	case apperrors.HasCode(err, apperrors.ErrConflict):
		s.metrics.Bookings.WithLabelValues("conflict").Inc()
	case apperrors.HasCode(err, apperrors.ErrInternal):
		s.metrics.Bookings.WithLabelValues("error").Inc()
	default:
		s.metrics.Bookings.WithLabelValues("rejected").Inc()
	}
	return apt, err
}

func (s *Service) book(ctx context.Context, patientID string, req model.BookAppointmentRequest) (*model.Appointment, error) {
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	if req.DoctorID == "" || req.SlotDate == "" || req.SlotTime == "" {
		return nil, apperrors.BadRequest("docId, slotDate and slotTime are required", nil)
	}
	if err := parseDate(req.SlotDate); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, service.RepoError("doctor", err)
	}
	if !doctor.IsActive || !doctor.Available {
		return nil, apperrors.BadRequest("doctor not available", nil)
	}
	if !doctor.OffersSlot(req.SlotTime) {
		return nil, apperrors.BadRequest("slot not offered", nil)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, service.RepoError("patient", err)
	}

	slot := model.BookedSlot{Date: req.SlotDate, Time: req.SlotTime}
	if err := s.doctors.ReserveSlot(ctx, doctor.ID, slot); err != nil {
		return nil, service.RepoError("doctor", err)
	}

	apt := &model.Appointment{
		DoctorID:      doctor.ID,
		PatientID:     patient.ID,
		SlotDate:      req.SlotDate,
		SlotTime:      req.SlotTime,
		Amount:        doctor.Fees,
		Status:        model.AppointmentStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		DoctorName:    doctor.Name,
		PatientName:   patient.Name,
		PatientEmail:  patient.Email,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		if relErr := s.doctors.ReleaseSlot(ctx, doctor.ID, slot); relErr != nil {
			s.logger.WithContext(ctx).Error(relErr, "Failed to release slot after booking failure",
				"doctor_id", doctor.ID, "slot_date", slot.Date, "slot_time", slot.Time)
		}
		return nil, apperrors.Internal(err)
	}

	s.logger.WithContext(ctx).Info("Appointment booked",
		"appointment_id", apt.ID, "doctor_id", apt.DoctorID, "slot_date", apt.SlotDate, "slot_time", apt.SlotTime)
	s.events.Emit(ctx, event.AppointmentBooked, apt)
	return apt, nil
}

// GetAppointment returns an appointment visible to actor.
func (s *Service) GetAppointment(ctx context.Context, actor model.Actor, id string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError("appointment", err)
	}
	if !actor.IsAdmin() && !apt.IsParticipant(actor.ID) {
		return nil, apperrors.Forbidden("not allowed to view this appointment", nil)
	}
	return apt, nil
}

// ListForActor lists the caller's own appointments, or all of them for admins.
func (s *Service) ListForActor(ctx context.Context, actor model.Actor, status model.AppointmentStatus) ([]*model.Appointment, error) {
	filter := model.AppointmentFilter{Status: status}
	switch {
	case actor.IsPatient():
		filter.PatientID = actor.ID
	case actor.IsDoctor():
		filter.DoctorID = actor.ID
	case !actor.IsAdmin():
		return nil, apperrors.Forbidden("", nil)
	}
	return s.List(ctx, filter)
}

func (s *Service) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	apts, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return apts, nil
}

func (s *Service) Confirm(ctx context.Context, actor model.Actor, id string) (*model.Appointment, error) {
	return s.transition(ctx, actor, id, ActionConfirm, "")
}

func (s *Service) Cancel(ctx context.Context, actor model.Actor, id, reason string) (*model.Appointment, error) {
	return s.transition(ctx, actor, id, ActionCancel, reason)
}

func (s *Service) Complete(ctx context.Context, actor model.Actor, id string) (*model.Appointment, error) {
	return s.transition(ctx, actor, id, ActionComplete, "")
}

func (s *Service) transition(ctx context.Context, actor model.Actor, id string, action Action, reason string) (*model.Appointment, error) {
	apt, err := s.transitionOnce(ctx, actor, id, action, reason)
	outcome := "success"
	if err != nil {
		outcome = "rejected"
		if apperrors.HasCode(err, apperrors.ErrInternal) {
			outcome = "error"
		}
	}
	s.metrics.Transitions.WithLabelValues(string(action), outcome).Inc()
	return apt, err
}

func (s *Service) transitionOnce(ctx context.Context, actor model.Actor, id string, action Action, reason string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError("appointment", err)
	}

	now := s.now()
	next, err := Transition(apt, action, actor, now)
	if err != nil {
		return nil, lifecycleError(err)
	}
	if next == apt.Status {
		return apt, nil
	}

	previous := apt.Status
	apply(apt, next, actor, reason, now)
	if err := s.appointments.UpdateIfStatus(ctx, apt, previous); err != nil {
		return nil, service.RepoError("appointment", err)
	}

	if next == model.AppointmentStatusCancelled {
		slot := model.BookedSlot{Date: apt.SlotDate, Time: apt.SlotTime}
		if err := s.doctors.ReleaseSlot(ctx, apt.DoctorID, slot); err != nil {
			s.logger.WithContext(ctx).Error(err, "Failed to release slot of cancelled appointment",
				"appointment_id", apt.ID, "doctor_id", apt.DoctorID)
		}
	}

	s.logger.WithContext(ctx).Info("Appointment status changed",
		"appointment_id", apt.ID, "from", previous, "to", next, "actor_role", actor.Role)
	s.events.Emit(ctx, eventFor(next), apt)
	return apt, nil
}

func eventFor(status model.AppointmentStatus) string {
	switch status {
	case model.AppointmentStatusConfirmed:
		return event.AppointmentConfirmed
	case model.AppointmentStatusCancelled:
		return event.AppointmentCancelled
	default:
		return event.AppointmentCompleted
	}
}

func lifecycleError(err error) error {
	switch {
	case errors.Is(err, ErrNotAllowed):
		return apperrors.Forbidden(err.Error(), err)
	case errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrCancelWindow),
		errors.Is(err, ErrUnknownAction):
		return apperrors.BadRequest(err.Error(), err)
	default:
		return apperrors.Internal(err)
	}
}

// CanSubscribe reports whether actor may receive events on a websocket topic.
func (s *Service) CanSubscribe(ctx context.Context, actor model.Actor, topic string) bool {
	if actor.IsAdmin() {
		return true
	}
	switch {
	case topic == event.DoctorTopic(actor.ID):
		return actor.IsDoctor()
	case topic == event.PatientTopic(actor.ID):
		return actor.IsPatient()
	case strings.HasPrefix(topic, event.AppointmentTopic("")):
		apt, err := s.appointments.Get(ctx, strings.TrimPrefix(topic, event.AppointmentTopic("")))
		return err == nil && apt.IsParticipant(actor.ID)
	}
	return false
}
