package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type prescriptionRepository struct {
	mu    sync.RWMutex
	items map[string]*model.Prescription
}

func NewPrescriptionRepository() repository.PrescriptionRepository {
	return &prescriptionRepository{items: make(map[string]*model.Prescription)}
}

func clonePrescription(p *model.Prescription) *model.Prescription {
	c := *p
	c.Medications = append([]model.Medication(nil), p.Medications...)
	return &c
}

func (r *prescriptionRepository) Create(_ context.Context, p *model.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	r.items[p.ID] = clonePrescription(p)
	return nil
}

func (r *prescriptionRepository) Get(_ context.Context, id string) (*model.Prescription, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePrescription(p), nil
}

func (r *prescriptionRepository) List(_ context.Context, doctorID, patientID string) ([]*model.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Prescription, 0)
	for _, p := range r.items {
		if doctorID != "" && p.DoctorID != doctorID {
			continue
		}
		if patientID != "" && p.PatientID != patientID {
			continue
		}
		out = append(out, clonePrescription(p))
	}
	sortByCreated(out, func(p *model.Prescription) time.Time { return p.CreatedAt })
	return out, nil
}

func (r *prescriptionRepository) Update(_ context.Context, p *model.Prescription) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.items[p.ID] = clonePrescription(p)
	return nil
}

func (r *prescriptionRepository) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type paymentRepository struct {
	mu    sync.RWMutex
	items map[string]model.Payment
}

func NewPaymentRepository() repository.PaymentRepository {
	return &paymentRepository{items: make(map[string]model.Payment)}
}

func (r *paymentRepository) Create(_ context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.AppointmentID == p.AppointmentID {
			return repository.ErrDuplicate
		}
	}
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	r.items[p.ID] = *p
	return nil
}

func (r *paymentRepository) Get(_ context.Context, id string) (*model.Payment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepository) GetByAppointment(_ context.Context, appointmentID string) (*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.AppointmentID == appointmentID {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *paymentRepository) ListByPatient(_ context.Context, patientID string) ([]*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Payment, 0)
	for _, p := range r.items {
		if p.PatientID == patientID {
			p := p
			out = append(out, &p)
		}
	}
	sortByCreated(out, func(p *model.Payment) time.Time { return p.CreatedAt })
	return out, nil
}

func (r *paymentRepository) UpdateStatus(_ context.Context, id string, status model.PaymentStatus) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p
	return nil
}

type reminderRepository struct {
	mu    sync.RWMutex
	items map[string]model.Reminder
}

func NewReminderRepository() repository.ReminderRepository {
	return &reminderRepository{items: make(map[string]model.Reminder)}
}

func (r *reminderRepository) Create(_ context.Context, rem *model.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp(&rem.ID, &rem.CreatedAt, &rem.UpdatedAt)
	r.items[rem.ID] = *rem
	return nil
}

func (r *reminderRepository) ListByPatient(_ context.Context, patientID string) ([]*model.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Reminder, 0)
	for _, rem := range r.items {
		if rem.PatientID == patientID {
			rem := rem
			out = append(out, &rem)
		}
	}
	sortByCreated(out, func(rem *model.Reminder) time.Time { return rem.CreatedAt })
	return out, nil
}

func (r *reminderRepository) Delete(_ context.Context, id, patientID string) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.items[id]
	if !ok || rem.PatientID != patientID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *reminderRepository) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rem := range r.items {
		if rem.CreatedAt.Before(cutoff) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type healthDataRepository struct {
	mu    sync.RWMutex
	items map[string]model.HealthData
}

func NewHealthDataRepository() repository.HealthDataRepository {
	return &healthDataRepository{items: make(map[string]model.HealthData)}
}

func (r *healthDataRepository) Create(_ context.Context, d *model.HealthData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	r.items[d.ID] = *d
	return nil
}

func (r *healthDataRepository) ListByPatient(_ context.Context, patientID string, kind model.HealthDataType) ([]*model.HealthData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.HealthData, 0)
	for _, d := range r.items {
		if d.PatientID != patientID || (kind != "" && d.Type != kind) {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sortByCreated(out, func(d *model.HealthData) time.Time { return d.RecordedAt })
	return out, nil
}

func (r *healthDataRepository) Delete(_ context.Context, id, patientID string) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.items[id]
	if !ok || d.PatientID != patientID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type contactRepository struct {
	mu    sync.RWMutex
	items map[string]model.Contact
}

func NewContactRepository() repository.ContactRepository {
	return &contactRepository{items: make(map[string]model.Contact)}
}

func (r *contactRepository) Create(_ context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	r.items[c.ID] = *c
	return nil
}

func (r *contactRepository) List(_ context.Context) ([]*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Contact, 0, len(r.items))
	for _, c := range r.items {
		c := c
		out = append(out, &c)
	}
	sortByCreated(out, func(c *model.Contact) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *contactRepository) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type recordRepository struct {
	mu    sync.RWMutex
	items map[string]model.Record
}

func NewRecordRepository() repository.RecordRepository {
	return &recordRepository{items: make(map[string]model.Record)}
}

func (r *recordRepository) Create(_ context.Context, rec *model.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	r.items[rec.ID] = *rec
	return nil
}

func (r *recordRepository) Get(_ context.Context, id string) (*model.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *recordRepository) ListByPatient(_ context.Context, patientID string) ([]*model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Record, 0)
	for _, rec := range r.items {
		if rec.PatientID == patientID {
			rec := rec
			out = append(out, &rec)
		}
	}
	sortByCreated(out, func(rec *model.Record) time.Time { return rec.CreatedAt })
	return out, nil
}

func (r *recordRepository) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
