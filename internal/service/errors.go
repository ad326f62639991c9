// Package service holds helpers shared by the domain services.
package service

import (
	"errors"

	"github.com/jwalitptl/medconnect-api/internal/repository"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

// RepoError maps a repository error onto the AppError returned to handlers.
func RepoError(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource, err)
	case errors.Is(err, repository.ErrInvalidID):
		return apperrors.BadRequest("invalid "+resource+" id", err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict(resource+" already exists", err)
	case errors.Is(err, repository.ErrSlotTaken):
		return apperrors.Conflict("slot not available", err)
	case errors.Is(err, repository.ErrStatusChanged):
		return apperrors.Conflict(resource+" was modified by another request", err)
	default:
		return apperrors.Internal(err)
	}
}
