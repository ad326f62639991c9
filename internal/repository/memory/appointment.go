package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type appointmentRepository struct {
	mu           sync.RWMutex
	appointments map[string]*model.Appointment
}

func NewAppointmentRepository() repository.AppointmentRepository {
	return &appointmentRepository{appointments: make(map[string]*model.Appointment)}
}

func cloneAppointment(a *model.Appointment) *model.Appointment {
	c := *a
	c.ICECandidates = append([]string(nil), a.ICECandidates...)
	return &c
}

func (r *appointmentRepository) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp(&apt.ID, &apt.CreatedAt, &apt.UpdatedAt)
	r.appointments[apt.ID] = cloneAppointment(apt)
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id string) (*model.Appointment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAppointment(a), nil
}

func (r *appointmentRepository) List(_ context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Appointment, 0)
	for _, a := range r.appointments {
		if filter.DoctorID != "" && a.DoctorID != filter.DoctorID {
			continue
		}
		if filter.PatientID != "" && a.PatientID != filter.PatientID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, cloneAppointment(a))
	}
	sortByCreated(out, func(a *model.Appointment) time.Time { return a.CreatedAt })
	return out, nil
}

func (r *appointmentRepository) UpdateIfStatus(_ context.Context, apt *model.Appointment, expected model.AppointmentStatus) error {
	if err := checkID(apt.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.appointments[apt.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if existing.Status != expected {
		return repository.ErrStatusChanged
	}
	apt.CreatedAt = existing.CreatedAt
	apt.UpdatedAt = time.Now().UTC()
	r.appointments[apt.ID] = cloneAppointment(apt)
	return nil
}

func (r *appointmentRepository) UpdateCall(_ context.Context, id string, update repository.CallUpdate) (*model.Appointment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Offer != nil {
		a.Offer = *update.Offer
	}
	if update.Answer != nil {
		a.Answer = *update.Answer
	}
	if update.AddCandidate != nil {
		a.ICECandidates = append(a.ICECandidates, *update.AddCandidate)
	}
	if update.EndedBy != nil {
		a.Ended = true
		a.EndedBy = *update.EndedBy
	}
	a.UpdatedAt = time.Now().UTC()
	return cloneAppointment(a), nil
}

func (r *appointmentRepository) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *appointmentRepository) DeleteByStatus(_ context.Context, status model.AppointmentStatus, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, a := range r.appointments {
		if a.Status == status && a.UpdatedAt.Before(cutoff) {
			delete(r.appointments, id)
			n++
		}
	}
	return n, nil
}
