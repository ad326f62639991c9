package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/medconnect-api/internal/repository"
)

//go:embed schema.sql
var schema string

// NewDB connects to the database at dsn and verifies the connection.
func NewDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// New wires every repository onto db.
func New(db *sqlx.DB) *repository.Repositories {
	base := NewBaseRepository(db)
	return &repository.Repositories{
		Doctors:       &doctorRepository{base},
		Patients:      &patientRepository{base},
		Users:         &userRepository{base},
		Appointments:  &appointmentRepository{base},
		Prescriptions: &prescriptionRepository{base},
		Payments:      &paymentRepository{base},
		Reminders:     &reminderRepository{base},
		HealthData:    &healthDataRepository{base},
		Contacts:      &contactRepository{base},
		Records:       &recordRepository{base},
		Ping:          db.PingContext,
		Migrate: func(ctx context.Context) error {
			if _, err := db.ExecContext(ctx, schema); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			return nil
		},
		Close: func(context.Context) error {
			return db.Close()
		},
	}
}
