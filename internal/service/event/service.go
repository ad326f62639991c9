// Package event fans appointment changes out to the broker, connected
// websocket clients and email.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/medconnect-api/internal/email"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/messaging"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
	"github.com/jwalitptl/medconnect-api/pkg/websocket"
)

const (
	AppointmentBooked    = "appointment.booked"
	AppointmentConfirmed = "appointment.confirmed"
	AppointmentCancelled = "appointment.cancelled"
	AppointmentCompleted = "appointment.completed"
	CallUpdated          = "appointment.call_updated"

	emailTimeout = 30 * time.Second
)

// Topic names clients subscribe to over the websocket.
func DoctorTopic(id string) string      { return "doctor:" + id }
func PatientTopic(id string) string     { return "patient:" + id }
func AppointmentTopic(id string) string { return "appointment:" + id }

// Emitter is what the appointment service depends on.
type Emitter interface {
	Emit(ctx context.Context, eventType string, apt *model.Appointment)
}

type EventService struct {
	broker  messaging.Broker
	hub     websocket.Publisher
	mailer  email.Service
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewEventService(broker messaging.Broker, hub websocket.Publisher, mailer email.Service, m *metrics.Metrics, log *logger.Logger) *EventService {
	return &EventService{
		broker:  broker,
		hub:     hub,
		mailer:  mailer,
		metrics: m,
		logger:  log,
	}
}

// Emit is best effort: failures are logged and counted, never returned.
func (s *EventService) Emit(ctx context.Context, eventType string, apt *model.Appointment) {
	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"event_type":     eventType,
		"appointment_id": apt.ID,
	})

	outcome := "success"
	if err := s.broker.Publish(ctx, messaging.ChannelAppointments, messaging.NewMessage(eventType, apt)); err != nil {
		outcome = "failure"
		log.Error(err, "Failed to publish appointment event")
	}
	s.metrics.EventsPublished.WithLabelValues(eventType, outcome).Inc()

	if err := s.broadcast(ctx, eventType, apt); err != nil {
		log.Error(err, "Failed to broadcast appointment event")
	}

	s.sendEmail(eventType, apt, log)
}

func (s *EventService) broadcast(ctx context.Context, eventType string, apt *model.Appointment) error {
	data, err := json.Marshal(apt)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment: %w", err)
	}
	topics := []string{DoctorTopic(apt.DoctorID), PatientTopic(apt.PatientID), AppointmentTopic(apt.ID)}
	for _, topic := range topics {
		evt := websocket.Event{Type: eventType, Topic: topic, ResourceID: apt.ID, Data: data}
		if err := s.hub.Publish(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// sendEmail delivers in the background under its own timeout.
func (s *EventService) sendEmail(eventType string, apt *model.Appointment, log *logger.Logger) {
	var send func(context.Context, *model.Appointment) error
	switch eventType {
	case AppointmentBooked:
		send = s.mailer.SendAppointmentBooked
	case AppointmentCancelled:
		send = s.mailer.SendAppointmentCancelled
	default:
		return
	}

	snapshot := *apt
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()
		if err := send(ctx, &snapshot); err != nil {
			log.Error(err, "Failed to send appointment email")
		}
	}()
}
