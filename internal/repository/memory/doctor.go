package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type doctorRepository struct {
	mu      sync.RWMutex
	doctors map[string]*model.Doctor
}

func NewDoctorRepository() repository.DoctorRepository {
	return &doctorRepository{doctors: make(map[string]*model.Doctor)}
}

func cloneDoctor(d *model.Doctor) *model.Doctor {
	c := *d
	c.FixedSlots = append([]string(nil), d.FixedSlots...)
	c.BookedSlots = append([]model.BookedSlot(nil), d.BookedSlots...)
	if d.WorkingHours != nil {
		c.WorkingHours = make(map[string]model.WorkingDay, len(d.WorkingHours))
		for k, v := range d.WorkingHours {
			c.WorkingHours[k] = v
		}
	}
	return &c
}

func (r *doctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(doctor.Email)
	for _, d := range r.doctors {
		if normalizeEmail(d.Email) == email {
			return repository.ErrDuplicate
		}
	}
	stamp(&doctor.ID, &doctor.CreatedAt, &doctor.UpdatedAt)
	r.doctors[doctor.ID] = cloneDoctor(doctor)
	return nil
}

func (r *doctorRepository) Get(_ context.Context, id string) (*model.Doctor, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneDoctor(d), nil
}

func (r *doctorRepository) GetByEmail(_ context.Context, email string) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = normalizeEmail(email)
	for _, d := range r.doctors {
		if normalizeEmail(d.Email) == email {
			return cloneDoctor(d), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *doctorRepository) List(_ context.Context, filter model.DoctorFilter) ([]*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		if filter.OnlyActive && !d.IsActive {
			continue
		}
		if filter.Specialization != "" && !strings.EqualFold(d.Specialization, filter.Specialization) {
			continue
		}
		out = append(out, cloneDoctor(d))
	}
	sortByCreated(out, func(d *model.Doctor) time.Time { return d.CreatedAt })
	return out, nil
}

func (r *doctorRepository) Update(_ context.Context, doctor *model.Doctor) error {
	if err := checkID(doctor.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.doctors[doctor.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := cloneDoctor(doctor)
	updated.BookedSlots = existing.BookedSlots
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	doctor.UpdatedAt = updated.UpdatedAt
	r.doctors[doctor.ID] = updated
	return nil
}

func (r *doctorRepository) ReserveSlot(_ context.Context, doctorID string, slot model.BookedSlot) error {
	if err := checkID(doctorID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.doctors[doctorID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, b := range d.BookedSlots {
		if b == slot {
			return repository.ErrSlotTaken
		}
	}
	d.BookedSlots = append(d.BookedSlots, slot)
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *doctorRepository) ReleaseSlot(_ context.Context, doctorID string, slot model.BookedSlot) error {
	if err := checkID(doctorID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.doctors[doctorID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := d.BookedSlots[:0]
	for _, b := range d.BookedSlots {
		if b != slot {
			kept = append(kept, b)
		}
	}
	d.BookedSlots = kept
	d.UpdatedAt = time.Now().UTC()
	return nil
}
