// Package admin aggregates numbers for the administrator dashboard.
package admin

import (
	"context"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

const latestAppointments = 5

type Service struct {
	repos *repository.Repositories
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

func (s *Service) Dashboard(ctx context.Context) (*model.AdminDashboard, error) {
	doctors, err := s.repos.Doctors.List(ctx, model.DoctorFilter{})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	patients, err := s.repos.Patients.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	apts, err := s.repos.Appointments.List(ctx, model.AppointmentFilter{})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	latest := apts
	if len(latest) > latestAppointments {
		latest = latest[:latestAppointments]
	}
	return &model.AdminDashboard{
		Doctors:      len(doctors),
		Patients:     len(patients),
		Appointments: len(apts),
		Latest:       latest,
	}, nil
}
