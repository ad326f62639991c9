package record

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	"github.com/jwalitptl/medconnect-api/internal/storage"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

const recordsDir = "records"

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"text/plain":      true,
}

// Upload describes one incoming file.
type Upload struct {
	Title       string
	Description string
	FileName    string
	ContentType string
	Body        io.Reader
}

type Service struct {
	repo    repository.RecordRepository
	storage *storage.Local
	logger  *logger.Logger
}

func NewService(repo repository.RecordRepository, store *storage.Local, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: store, logger: log}
}

// Create stores the file and its metadata for the patient.
func (s *Service) Create(ctx context.Context, patientID string, up Upload) (*model.Record, error) {
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	if !allowedTypes[contentType] {
		return nil, apperrors.BadRequest("unsupported file type "+contentType, nil)
	}
	title := strings.TrimSpace(up.Title)
	if title == "" {
		title = storage.Sanitize(up.FileName)
	}

	url, size, err := s.storage.Save(recordsDir, up.FileName, up.Body)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, apperrors.BadRequest("file exceeds the upload size limit", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	rec := &model.Record{
		PatientID:   patientID,
		Title:       title,
		Description: up.Description,
		FileName:    storage.Sanitize(up.FileName),
		FilePath:    url,
		ContentType: contentType,
		Size:        size,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		if rmErr := s.storage.Remove(url); rmErr != nil {
			s.logger.WithContext(ctx).Error(rmErr, "Failed to remove orphaned upload", "path", url)
		}
		return nil, service.RepoError("record", err)
	}
	s.logger.WithContext(ctx).Info("Medical record uploaded", "record_id", rec.ID, "size", size)
	return rec, nil
}

func (s *Service) List(ctx context.Context, patientID string) ([]*model.Record, error) {
	list, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// Delete removes the record and its file. Only the owning patient or an
// admin may delete.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id string) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.RepoError("record", err)
	}
	if !actor.IsAdmin() && rec.PatientID != actor.ID {
		return apperrors.Forbidden("not allowed to delete this record", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError("record", err)
	}
	if err := s.storage.Remove(rec.FilePath); err != nil {
		s.logger.WithContext(ctx).Error(err, "Failed to remove record file", "record_id", id, "path", rec.FilePath)
	}
	return nil
}
