package appointment

import (
	"errors"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/model"
)

type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// PatientCancelWindow is how long before the slot a patient may still cancel.
const PatientCancelWindow = time.Hour

var (
	ErrInvalidTransition = errors.New("appointment must be confirmed before it can be completed")
	ErrAlreadyCompleted  = errors.New("appointment is already completed")
	ErrAlreadyCancelled  = errors.New("appointment is already cancelled")
	ErrNotAllowed        = errors.New("not allowed to perform this action on the appointment")
	ErrCancelWindow      = errors.New("appointments can only be cancelled more than 1 hour before the slot")
	ErrUnknownAction     = errors.New("unknown appointment action")
)

// Transition decides the status apt moves to when actor performs action at
// now. It does not modify apt.
func Transition(apt *model.Appointment, action Action, actor model.Actor, now time.Time) (model.AppointmentStatus, error) {
	if err := authorize(apt, action, actor); err != nil {
		return apt.Status, err
	}

	switch apt.Status {
	case model.AppointmentStatusCompleted:
		return apt.Status, ErrAlreadyCompleted
	case model.AppointmentStatusCancelled:
		return apt.Status, ErrAlreadyCancelled
	}

	switch action {
	case ActionConfirm:
		return model.AppointmentStatusConfirmed, nil
	case ActionComplete:
		if apt.Status != model.AppointmentStatusConfirmed {
			return apt.Status, ErrInvalidTransition
		}
		return model.AppointmentStatusCompleted, nil
	case ActionCancel:
		if actor.IsPatient() {
			start, err := apt.SlotStart(now.Location())
			if err != nil || start.Sub(now) <= PatientCancelWindow {
				return apt.Status, ErrCancelWindow
			}
		}
		return model.AppointmentStatusCancelled, nil
	}
	return apt.Status, ErrUnknownAction
}

func authorize(apt *model.Appointment, action Action, actor model.Actor) error {
	owner := actor.IsPatient() && actor.ID == apt.PatientID
	assigned := actor.IsDoctor() && actor.ID == apt.DoctorID

	switch action {
	case ActionConfirm, ActionCancel:
		if owner || assigned || actor.IsAdmin() {
			return nil
		}
	case ActionComplete:
		if assigned {
			return nil
		}
	default:
		return ErrUnknownAction
	}
	return ErrNotAllowed
}

// apply records the side fields of a transition to next on apt.
func apply(apt *model.Appointment, next model.AppointmentStatus, actor model.Actor, reason string, now time.Time) {
	if apt.Status == next {
		return
	}
	at := now.UTC()

	switch next {
	case model.AppointmentStatusConfirmed:
		apt.PaymentStatus = model.PaymentStatusPaid
		apt.ConfirmedAt = &at
	case model.AppointmentStatusCancelled:
		apt.CancelledBy = actor.Role
		apt.CancelledByID = actor.ID
		apt.Reason = reason
		apt.CancelledAt = &at
		if apt.PaymentStatus == model.PaymentStatusPaid {
			apt.PaymentStatus = model.PaymentStatusRefunded
			apt.RefundDate = &at
			apt.RefundAmount = apt.Amount
		}
	case model.AppointmentStatusCompleted:
		apt.IsCompleted = true
		apt.CompletedAt = &at
		apt.CompletedBy = actor.ID
	}
	apt.Status = next
}
