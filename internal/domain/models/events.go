package models

import "time"

// EventType enumerates the domain events a webhook delivery can produce.
type EventType string

const (
	EventMessageReceived EventType = "message_received"
	EventMessageStatus   EventType = "message_status"
	EventWebhookError    EventType = "webhook_error"
)

// WebhookEvent is the flattened, typed representation of one message, status
// receipt or error record from a webhook delivery. Exactly one of Message,
// Status or Error is set, matching Type. Events are never mutated after
// construction.
type WebhookEvent struct {
	Type          EventType       `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
	PhoneNumberID string          `json:"phone_number_id"`
	Message       *InboundMessage `json:"message,omitempty"`
	Contact       *Contact        `json:"contact,omitempty"`
	Status        *MessageStatus  `json:"status,omitempty"`
	Error         *WebhookError   `json:"error,omitempty"`
}

// Sender returns the originating wa_id for message events, empty otherwise.
func (e WebhookEvent) Sender() string {
	if e.Message != nil {
		return e.Message.From
	}
	return ""
}

// StoredEvent is the MongoDB document wrapping a WebhookEvent with ingest
// bookkeeping.
type StoredEvent struct {
	BatchID       string          `bson:"batch_id" json:"batch_id"`
	Type          EventType       `bson:"type" json:"type"`
	Timestamp     time.Time       `bson:"timestamp" json:"timestamp"`
	PhoneNumberID string          `bson:"phone_number_id" json:"phone_number_id"`
	Message       *InboundMessage `bson:"message,omitempty" json:"message,omitempty"`
	Contact       *Contact        `bson:"contact,omitempty" json:"contact,omitempty"`
	Status        *MessageStatus  `bson:"status,omitempty" json:"status,omitempty"`
	Error         *WebhookError   `bson:"error,omitempty" json:"error,omitempty"`
	ReceivedAt    time.Time       `bson:"received_at" json:"received_at"`
}

// Event converts the stored document back into the in-memory representation.
func (s StoredEvent) Event() WebhookEvent {
	return WebhookEvent{
		Type:          s.Type,
		Timestamp:     s.Timestamp,
		PhoneNumberID: s.PhoneNumberID,
		Message:       s.Message,
		Contact:       s.Contact,
		Status:        s.Status,
		Error:         s.Error,
	}
}

// NewStoredEvent wraps an event for persistence.
func NewStoredEvent(batchID string, ev WebhookEvent, receivedAt time.Time) StoredEvent {
	return StoredEvent{
		BatchID:       batchID,
		Type:          ev.Type,
		Timestamp:     ev.Timestamp,
		PhoneNumberID: ev.PhoneNumberID,
		Message:       ev.Message,
		Contact:       ev.Contact,
		Status:        ev.Status,
		Error:         ev.Error,
		ReceivedAt:    receivedAt,
	}
}
