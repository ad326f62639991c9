package appointment

import (
	"context"
	"encoding/json"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository"
	"github.com/jwalitptl/medconnect-api/internal/service"
	"github.com/jwalitptl/medconnect-api/internal/service/event"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

// Video calls are peer to peer. The server only relays the opaque WebRTC
// offer, answer and ICE candidates between the two participants.

func (s *Service) SetOffer(ctx context.Context, actor model.Actor, id, payload string) (*model.CallState, error) {
	return s.signal(ctx, actor, id, payload, func(p *string) repository.CallUpdate {
		return repository.CallUpdate{Offer: p}
	})
}

func (s *Service) SetAnswer(ctx context.Context, actor model.Actor, id, payload string) (*model.CallState, error) {
	return s.signal(ctx, actor, id, payload, func(p *string) repository.CallUpdate {
		return repository.CallUpdate{Answer: p}
	})
}

func (s *Service) AddICECandidate(ctx context.Context, actor model.Actor, id, payload string) (*model.CallState, error) {
	return s.signal(ctx, actor, id, payload, func(p *string) repository.CallUpdate {
		return repository.CallUpdate{AddCandidate: p}
	})
}

// EndCall marks the call as ended by the actor's role.
func (s *Service) EndCall(ctx context.Context, actor model.Actor, id string) (*model.CallState, error) {
	if _, err := s.callParticipant(ctx, actor, id); err != nil {
		return nil, err
	}
	role := actor.Role
	return s.updateCall(ctx, id, repository.CallUpdate{EndedBy: &role})
}

func (s *Service) GetCall(ctx context.Context, actor model.Actor, id string) (*model.CallState, error) {
	apt, err := s.callParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &apt.CallState, nil
}

func (s *Service) signal(ctx context.Context, actor model.Actor, id, payload string, build func(*string) repository.CallUpdate) (*model.CallState, error) {
	if !json.Valid([]byte(payload)) {
		return nil, apperrors.BadRequest("payload must be valid JSON", nil)
	}
	apt, err := s.callParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if apt.Status == model.AppointmentStatusCancelled || apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.BadRequest("call is not available for a "+string(apt.Status)+" appointment", nil)
	}
	return s.updateCall(ctx, id, build(&payload))
}

func (s *Service) updateCall(ctx context.Context, id string, update repository.CallUpdate) (*model.CallState, error) {
	apt, err := s.appointments.UpdateCall(ctx, id, update)
	if err != nil {
		return nil, service.RepoError("appointment", err)
	}
	s.events.Emit(ctx, event.CallUpdated, apt)
	return &apt.CallState, nil
}

// callParticipant loads the appointment and requires actor to be its doctor
// or patient.
func (s *Service) callParticipant(ctx context.Context, actor model.Actor, id string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError("appointment", err)
	}
	if !apt.IsParticipant(actor.ID) {
		return nil, apperrors.Forbidden("only the appointment's doctor or patient can join the call", nil)
	}
	return apt, nil
}
