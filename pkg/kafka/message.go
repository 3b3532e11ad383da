package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by this service. The mail worker that replaced
// direct SMTP delivery consumes these and notifies guests and staff.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationDeclined  = "reservation.declined"
	EventContactReceived      = "contact.received"
)

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
)

type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

type MessageBuilder struct {
	msg Message
	err error
}

func NewMessage(eventType string) *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			Headers: map[string]string{
				HeaderEventID:       uuid.NewString(),
				HeaderEventType:     eventType,
				HeaderSchemaVersion: "1",
				HeaderSource:        "tavola",
				HeaderTimestamp:     time.Now().UTC().Format(time.RFC3339),
			},
			Timestamp: time.Now().UTC(),
		},
	}
}

func (b *MessageBuilder) WithKey(key string) *MessageBuilder {
	b.msg.Key = key
	return b
}

func (b *MessageBuilder) WithPayload(payload any) *MessageBuilder {
	data, err := json.Marshal(payload)
	if err != nil {
		b.err = err
		return b
	}
	b.msg.Value = data
	return b
}

func (b *MessageBuilder) Build() (Message, error) {
	return b.msg, b.err
}
