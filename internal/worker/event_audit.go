package worker

import (
	"context"
	"encoding/json"

	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/messaging"
)

// EventAuditor writes one structured log line per appointment event seen on
// the broker, giving deployments an audit trail outside the api process.
type EventAuditor struct {
	broker messaging.Broker
	logger *logger.Logger
}

func NewEventAuditor(broker messaging.Broker, log *logger.Logger) *EventAuditor {
	return &EventAuditor{
		broker: broker,
		logger: log.WithFields(map[string]interface{}{"component": "event_audit"}),
	}
}

type auditedEvent struct {
	Type    string `json:"type"`
	Payload struct {
		ID        string `json:"id"`
		DoctorID  string `json:"docId"`
		PatientID string `json:"userId"`
		Status    string `json:"status"`
	} `json:"payload"`
}

// Run consumes until ctx is done or the subscription closes.
func (a *EventAuditor) Run(ctx context.Context) error {
	msgs, err := a.broker.Subscribe(ctx, messaging.ChannelAppointments)
	if err != nil {
		return err
	}
	a.logger.Info("Listening for appointment events", "channel", messaging.ChannelAppointments)
	for raw := range msgs {
		a.record(raw)
	}
	return nil
}

func (a *EventAuditor) record(raw []byte) {
	var ev auditedEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		a.logger.Error(err, "Dropping malformed appointment event")
		return
	}
	a.logger.Info("Appointment event",
		"event_type", ev.Type,
		"appointment_id", ev.Payload.ID,
		"doctor_id", ev.Payload.DoctorID,
		"patient_id", ev.Payload.PatientID,
		"status", ev.Payload.Status,
	)
}
