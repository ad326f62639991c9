// Package memory is an in-process storage backend for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medconnect-api/internal/repository"
)

// New returns a fresh in-memory backend.
func New() *repository.Repositories {
	noop := func(context.Context) error { return nil }
	return &repository.Repositories{
		Doctors:       NewDoctorRepository(),
		Patients:      NewPatientRepository(),
		Users:         NewUserRepository(),
		Appointments:  NewAppointmentRepository(),
		Prescriptions: NewPrescriptionRepository(),
		Payments:      NewPaymentRepository(),
		Reminders:     NewReminderRepository(),
		HealthData:    NewHealthDataRepository(),
		Contacts:      NewContactRepository(),
		Records:       NewRecordRepository(),
		Ping:          noop,
		Migrate:       noop,
		Close:         noop,
	}
}

func newID() string {
	return uuid.NewString()
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrInvalidID
	}
	return nil
}

func stamp(id *string, created, updated *time.Time) {
	now := time.Now().UTC()
	if *id == "" {
		*id = newID()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sortByCreated orders newest first, matching the other backends.
func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}
