package contact

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/email"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

const notifyTimeout = 30 * time.Second

type Service struct {
	repo   repository.ContactRepository
	mailer email.Service
	logger *logger.Logger
}

func NewService(repo repository.ContactRepository, mailer email.Service, log *logger.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, logger: log}
}

// Submit stores a public contact form message and forwards it to support.
func (s *Service) Submit(ctx context.Context, req model.CreateContactRequest) (*model.Contact, error) {
	c := &model.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, service.RepoError("contact", err)
	}

	log := s.logger.WithContext(ctx)
	go func() {
		mailCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.mailer.SendContactReceived(mailCtx, c); err != nil {
			log.Error(err, "Failed to forward contact message", "contact_id", c.ID)
		}
	}()
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Contact, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return service.RepoError("contact", s.repo.Delete(ctx, id))
}
