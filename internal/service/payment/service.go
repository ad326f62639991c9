package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

const defaultCurrency = "INR"

// Confirmer moves an appointment to confirmed through the lifecycle rules.
type Confirmer interface {
	Confirm(ctx context.Context, actor model.Actor, id string) (*model.Appointment, error)
}

type Service struct {
	payments     repository.PaymentRepository
	appointments repository.AppointmentRepository
	confirmer    Confirmer
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(repos *repository.Repositories, confirmer Confirmer, log *logger.Logger) *Service {
	return &Service{
		payments:     repos.Payments,
		appointments: repos.Appointments,
		confirmer:    confirmer,
		logger:       log,
		now:          time.Now,
	}
}

// Create records a payment by the patient for their own appointment and
// confirms the appointment. No gateway is charged.
func (s *Service) Create(ctx context.Context, actor model.Actor, req model.CreatePaymentRequest) (*model.Payment, error) {
	apt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return nil, service.RepoError("appointment", err)
	}
	if apt.PatientID != actor.ID {
		return nil, apperrors.Forbidden("only the patient of this appointment can pay for it", nil)
	}
	if apt.Status.Terminal() {
		return nil, apperrors.BadRequest("appointment is already "+string(apt.Status), nil)
	}
	if apt.PaymentStatus == model.PaymentStatusPaid {
		return nil, apperrors.Conflict("appointment is already paid", nil)
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	txID := req.TransactionID
	if txID == "" {
		txID = "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	now := s.now().UTC()
	p := &model.Payment{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		Amount:        apt.Amount,
		Currency:      currency,
		Method:        req.Method,
		TransactionID: txID,
		Status:        model.PaymentStatusPaid,
		PaidAt:        &now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, service.RepoError("payment", err)
	}

	if _, err := s.confirmer.Confirm(ctx, actor, apt.ID); err != nil {
		s.logger.WithContext(ctx).Error(err, "Payment recorded but confirmation failed, marking refunded",
			"payment_id", p.ID, "appointment_id", apt.ID)
		if uerr := s.payments.UpdateStatus(ctx, p.ID, model.PaymentStatusRefunded); uerr != nil {
			s.logger.WithContext(ctx).Error(uerr, "Failed to mark payment refunded", "payment_id", p.ID)
		}
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Payment recorded", "payment_id", p.ID, "appointment_id", apt.ID, "amount", p.Amount)
	return p, nil
}

func (s *Service) ListMine(ctx context.Context, actor model.Actor) ([]*model.Payment, error) {
	list, err := s.payments.ListByPatient(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id string) (*model.Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError("payment", err)
	}
	if !actor.IsAdmin() && actor.ID != p.PatientID && actor.ID != p.DoctorID {
		return nil, apperrors.Forbidden("not allowed to view this payment", nil)
	}
	return p, nil
}
