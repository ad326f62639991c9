package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("malformed identifier")
	ErrDuplicate     = errors.New("duplicate record")
	ErrSlotTaken     = errors.New("slot already booked")
	ErrStatusChanged = errors.New("status changed concurrently")
)

// CallUpdate is a partial change to an appointment's signaling state.
// Nil fields are left untouched.
type CallUpdate struct {
	Offer        *string
	Answer       *string
	AddCandidate *string
	EndedBy      *string
}

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id string) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
		List(ctx context.Context, filter model.DoctorFilter) ([]*model.Doctor, error)
		// Update writes every field except BookedSlots.
		Update(ctx context.Context, doctor *model.Doctor) error
		// ReserveSlot adds the slot only if no entry with the same date and
		// time exists, failing with ErrSlotTaken otherwise.
		ReserveSlot(ctx context.Context, doctorID string, slot model.BookedSlot) error
		ReleaseSlot(ctx context.Context, doctorID string, slot model.BookedSlot) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id string) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id string) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id string) (*model.Appointment, error)
		List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
		// UpdateIfStatus persists the appointment only if its stored status
		// still equals expected, failing with ErrStatusChanged otherwise.
		UpdateIfStatus(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error
		UpdateCall(ctx context.Context, id string, update CallUpdate) (*model.Appointment, error)
		Delete(ctx context.Context, id string) error
		// DeleteByStatus removes appointments in status last updated before cutoff.
		DeleteByStatus(ctx context.Context, status model.AppointmentStatus, cutoff time.Time) (int64, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id string) (*model.Prescription, error)
		List(ctx context.Context, doctorID, patientID string) ([]*model.Prescription, error)
		Update(ctx context.Context, prescription *model.Prescription) error
		Delete(ctx context.Context, id string) error
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		Get(ctx context.Context, id string) (*model.Payment, error)
		GetByAppointment(ctx context.Context, appointmentID string) (*model.Payment, error)
		ListByPatient(ctx context.Context, patientID string) ([]*model.Payment, error)
		UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error
	}

	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.Reminder) error
		ListByPatient(ctx context.Context, patientID string) ([]*model.Reminder, error)
		Delete(ctx context.Context, id, patientID string) error
		DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	HealthDataRepository interface {
		Create(ctx context.Context, data *model.HealthData) error
		ListByPatient(ctx context.Context, patientID string, kind model.HealthDataType) ([]*model.HealthData, error)
		Delete(ctx context.Context, id, patientID string) error
	}

	ContactRepository interface {
		Create(ctx context.Context, contact *model.Contact) error
		List(ctx context.Context) ([]*model.Contact, error)
		Delete(ctx context.Context, id string) error
	}

	RecordRepository interface {
		Create(ctx context.Context, record *model.Record) error
		Get(ctx context.Context, id string) (*model.Record, error)
		ListByPatient(ctx context.Context, patientID string) ([]*model.Record, error)
		Delete(ctx context.Context, id string) error
	}

	// ResetCodeStore keeps hashed one-time password reset codes.
	ResetCodeStore interface {
		// Save stores a fresh code and resets its failed-attempt count.
		Save(ctx context.Context, key, digest string, ttl time.Duration) error
		Get(ctx context.Context, key string) (string, error)
		// Fail records a wrong guess against key and returns the total so far.
		Fail(ctx context.Context, key string) (int, error)
		Delete(ctx context.Context, key string) error
	}
)

// Repositories bundles one storage backend.
type Repositories struct {
	Doctors       DoctorRepository
	Patients      PatientRepository
	Users         UserRepository
	Appointments  AppointmentRepository
	Prescriptions PrescriptionRepository
	Payments      PaymentRepository
	Reminders     ReminderRepository
	HealthData    HealthDataRepository
	Contacts      ContactRepository
	Records       RecordRepository

	Ping    func(ctx context.Context) error
	Migrate func(ctx context.Context) error
	Close   func(ctx context.Context) error
}
