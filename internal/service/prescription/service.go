package prescription

import (
	"context"
	"strings"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

type Service struct {
	prescriptions repository.PrescriptionRepository
	appointments  repository.AppointmentRepository
	logger        *logger.Logger
}

func NewService(repos *repository.Repositories, log *logger.Logger) *Service {
	return &Service{
		prescriptions: repos.Prescriptions,
		appointments:  repos.Appointments,
		logger:        log,
	}
}

// Create writes a prescription for an appointment of the calling doctor.
func (s *Service) Create(ctx context.Context, actor model.Actor, req model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if !actor.IsDoctor() {
		return nil, apperrors.Forbidden("only doctors can write prescriptions", nil)
	}
	apt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return nil, service.RepoError("appointment", err)
	}
	if apt.DoctorID != actor.ID {
		return nil, apperrors.Forbidden("not the assigned doctor of this appointment", nil)
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("appointment is cancelled", nil)
	}

	p := &model.Prescription{
		AppointmentID: apt.ID,
		DoctorID:      apt.DoctorID,
		PatientID:     apt.PatientID,
		DoctorName:    apt.DoctorName,
		PatientName:   apt.PatientName,
		Diagnosis:     strings.TrimSpace(req.Diagnosis),
		Medications:   req.Medications,
		Notes:         req.Notes,
		FollowUpDate:  req.FollowUpDate,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, service.RepoError("prescription", err)
	}
	s.logger.WithContext(ctx).Info("Prescription created", "prescription_id", p.ID, "appointment_id", apt.ID)
	return p, nil
}

// Get returns a prescription visible to its doctor, its patient or an admin.
func (s *Service) Get(ctx context.Context, actor model.Actor, id string) (*model.Prescription, error) {
	p, err := s.prescriptions.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError("prescription", err)
	}
	if !actor.IsAdmin() && actor.ID != p.DoctorID && actor.ID != p.PatientID {
		return nil, apperrors.Forbidden("not allowed to view this prescription", nil)
	}
	return p, nil
}

// List returns the caller's prescriptions. Doctors may narrow by patient.
func (s *Service) List(ctx context.Context, actor model.Actor, patientID string) ([]*model.Prescription, error) {
	var doctorID string
	switch {
	case actor.IsPatient():
		patientID = actor.ID
	case actor.IsDoctor():
		doctorID = actor.ID
	case !actor.IsAdmin():
		return nil, apperrors.Forbidden("", nil)
	}
	list, err := s.prescriptions.List(ctx, doctorID, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, actor model.Actor, id string, req model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Diagnosis != nil {
		p.Diagnosis = strings.TrimSpace(*req.Diagnosis)
	}
	if req.Medications != nil {
		p.Medications = req.Medications
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if req.FollowUpDate != nil {
		p.FollowUpDate = *req.FollowUpDate
	}
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, service.RepoError("prescription", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.prescriptions.Delete(ctx, id); err != nil {
		return service.RepoError("prescription", err)
	}
	s.logger.WithContext(ctx).Info("Prescription deleted", "prescription_id", id)
	return nil
}

// owned loads a prescription the actor may change: its author or an admin.
func (s *Service) owned(ctx context.Context, actor model.Actor, id string) (*model.Prescription, error) {
	p, err := s.prescriptions.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError("prescription", err)
	}
	if !actor.IsAdmin() && actor.ID != p.DoctorID {
		return nil, apperrors.Forbidden("only the prescribing doctor can change this prescription", nil)
	}
	return p, nil
}
