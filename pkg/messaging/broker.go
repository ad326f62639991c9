package messaging

import (
	"context"
	"time"
)

// Channel appointment lifecycle events are published on.
const ChannelAppointments = "appointments"

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage stamps a message with the current time.
func NewMessage(eventType string, payload interface{}) Message {
	return Message{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}
