package reminder

import (
	"context"
	"strings"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

// Service manages medicine reminders. Reminders are short lived; the cleanup
// job removes them a few minutes after creation.
type Service struct {
	repo repository.ReminderRepository
}

func NewService(repo repository.ReminderRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, patientID string, req model.CreateReminderRequest) (*model.Reminder, error) {
	r := &model.Reminder{
		PatientID:    patientID,
		MedicineName: strings.TrimSpace(req.MedicineName),
		Dosage:       req.Dosage,
		Time:         req.Time,
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, service.RepoError("reminder", err)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, patientID string) ([]*model.Reminder, error) {
	list, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// Delete removes a reminder owned by the patient.
func (s *Service) Delete(ctx context.Context, patientID, id string) error {
	return service.RepoError("reminder", s.repo.Delete(ctx, id, patientID))
}
