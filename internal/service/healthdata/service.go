package healthdata

import (
	"context"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

var validTypes = map[model.HealthDataType]bool{
	model.HealthWeight:        true,
	model.HealthBloodPressure: true,
	model.HealthHeartRate:     true,
	model.HealthBloodSugar:    true,
	model.HealthTemperature:   true,
	model.HealthSleep:         true,
	model.HealthSteps:         true,
}

type Service struct {
	repo repository.HealthDataRepository
	now  func() time.Time
}

func NewService(repo repository.HealthDataRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, patientID string, req model.CreateHealthDataRequest) (*model.HealthData, error) {
	if !validTypes[req.Type] {
		return nil, apperrors.BadRequest("unknown health data type "+string(req.Type), nil)
	}
	recorded := s.now().UTC()
	if req.RecordedAt != nil {
		if req.RecordedAt.After(recorded) {
			return nil, apperrors.BadRequest("recordedAt must not be in the future", nil)
		}
		recorded = req.RecordedAt.UTC()
	}
	d := &model.HealthData{
		PatientID:  patientID,
		Type:       req.Type,
		Value:      req.Value,
		Unit:       req.Unit,
		Notes:      req.Notes,
		RecordedAt: recorded,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, service.RepoError("health data", err)
	}
	return d, nil
}

// List returns the patient's entries, newest reading first. An empty kind
// returns every type.
func (s *Service) List(ctx context.Context, patientID string, kind model.HealthDataType) ([]*model.HealthData, error) {
	if kind != "" && !validTypes[kind] {
		return nil, apperrors.BadRequest("unknown health data type "+string(kind), nil)
	}
	list, err := s.repo.ListByPatient(ctx, patientID, kind)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, patientID, id string) error {
	return service.RepoError("health data", s.repo.Delete(ctx, id, patientID))
}
