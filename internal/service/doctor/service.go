package doctor

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

type Service struct {
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	logger       *logger.Logger
}

func NewService(repos *repository.Repositories, log *logger.Logger) *Service {
	return &Service{
		doctors:      repos.Doctors,
		appointments: repos.Appointments,
		logger:       log,
	}
}

// List returns doctors for the public catalogue. Admins see inactive ones too.
func (s *Service) List(ctx context.Context, specialization string, includeInactive bool) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx, model.DoctorFilter{
		Specialization: strings.TrimSpace(specialization),
		OnlyActive:     !includeInactive,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return doctors, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError("doctor", err)
	}
	return doctor, nil
}

func (s *Service) UpdateProfile(ctx context.Context, doctorID string, req model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doctor.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Degree != nil {
		doctor.Degree = *req.Degree
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.Fees != nil {
		doctor.Fees = *req.Fees
	}
	if req.About != nil {
		doctor.About = *req.About
	}
	if req.Address != nil {
		doctor.Address = *req.Address
	}

	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, service.RepoError("doctor", err)
	}
	return doctor, nil
}

// ToggleAvailability flips whether the doctor accepts new bookings.
func (s *Service) ToggleAvailability(ctx context.Context, doctorID string) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	doctor.Available = !doctor.Available
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, service.RepoError("doctor", err)
	}
	s.logger.WithContext(ctx).Info("Doctor availability changed", "doctor_id", doctor.ID, "available", doctor.Available)
	return doctor, nil
}

// UpdateSchedule replaces the fixed slots and working hours. Slots already
// booked stay booked even when their time is no longer offered.
func (s *Service) UpdateSchedule(ctx context.Context, doctorID string, req model.UpdateScheduleRequest) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if len(req.FixedSlots) > 0 {
		slots, err := normalizeSlots(req.FixedSlots)
		if err != nil {
			return nil, err
		}
		doctor.FixedSlots = slots
	}
	if req.WorkingHours != nil {
		doctor.WorkingHours = req.WorkingHours
	}
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, service.RepoError("doctor", err)
	}
	return doctor, nil
}

func normalizeSlots(slots []string) ([]string, error) {
	seen := make(map[string]bool, len(slots))
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		slot = strings.TrimSpace(slot)
		if seen[slot] {
			return nil, apperrors.BadRequest("duplicate slot "+slot, nil)
		}
		seen[slot] = true
		out = append(out, slot)
	}
	sort.Strings(out)
	return out, nil
}

// SetActive is the admin switch that hides a doctor from the catalogue and
// blocks new bookings.
func (s *Service) SetActive(ctx context.Context, doctorID string, active bool) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	doctor.IsActive = active
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, service.RepoError("doctor", err)
	}
	s.logger.WithContext(ctx).Info("Doctor activation changed", "doctor_id", doctor.ID, "active", active)
	return doctor, nil
}

// Dashboard summarizes a doctor's appointments.
func (s *Service) Dashboard(ctx context.Context, doctorID string) (*model.DoctorDashboard, error) {
	if _, err := s.Get(ctx, doctorID); err != nil {
		return nil, err
	}
	apts, err := s.appointments.List(ctx, model.AppointmentFilter{DoctorID: doctorID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	dash := &model.DoctorDashboard{Appointments: len(apts)}
	patients := make(map[string]struct{})
	for _, apt := range apts {
		patients[apt.PatientID] = struct{}{}
		if apt.Status == model.AppointmentStatusCompleted || apt.PaymentStatus == model.PaymentStatusPaid {
			dash.Earnings += apt.Amount
		}
		switch apt.Status {
		case model.AppointmentStatusPending:
			dash.Pending++
		case model.AppointmentStatusCompleted:
			dash.Completed++
		case model.AppointmentStatusCancelled:
			dash.Cancelled++
		}
	}
	dash.Patients = len(patients)
	dash.Latest = latest(apts, 5)
	return dash, nil
}

// latest returns up to n appointments; the repositories list newest first.
func latest(apts []*model.Appointment, n int) []*model.Appointment {
	if len(apts) < n {
		n = len(apts)
	}
	return apts[:n]
}
