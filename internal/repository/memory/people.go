package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type patientRepository struct {
	mu       sync.RWMutex
	patients map[string]model.Patient
}

func NewPatientRepository() repository.PatientRepository {
	return &patientRepository{patients: make(map[string]model.Patient)}
}

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(patient.Email)
	for _, p := range r.patients {
		if normalizeEmail(p.Email) == email {
			return repository.ErrDuplicate
		}
	}
	stamp(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)
	r.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) Get(_ context.Context, id string) (*model.Patient, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepository) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = normalizeEmail(email)
	for _, p := range r.patients {
		if normalizeEmail(p.Email) == email {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patientRepository) Update(_ context.Context, patient *model.Patient) error {
	if err := checkID(patient.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.patients[patient.ID]
	if !ok {
		return repository.ErrNotFound
	}
	patient.CreatedAt = existing.CreatedAt
	patient.UpdatedAt = time.Now().UTC()
	r.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) List(_ context.Context) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		p := p
		out = append(out, &p)
	}
	sortByCreated(out, func(p *model.Patient) time.Time { return p.CreatedAt })
	return out, nil
}

type userRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]model.User)}
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(user.Email)
	for _, u := range r.users {
		if normalizeEmail(u.Email) == email {
			return repository.ErrDuplicate
		}
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) Get(_ context.Context, id string) (*model.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = normalizeEmail(email)
	for _, u := range r.users {
		if normalizeEmail(u.Email) == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) Update(_ context.Context, user *model.User) error {
	if err := checkID(user.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}
