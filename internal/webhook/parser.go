package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

// EntryError records a failure local to one webhook entry. The raw entry is
// kept for diagnostics so a bad delivery can be replayed or inspected later.
type EntryError struct {
	EntryID  string              `json:"entry_id"`
	Reason   string              `json:"reason"`
	RawEntry models.WebhookEntry `json:"raw_entry"`
}

// ParseMetadata summarizes one parse call.
type ParseMetadata struct {
	TotalEntries   int     `json:"total_entries"`
	ParsedEntries  int     `json:"parsed_entries"`
	TotalEvents    int     `json:"total_events"`
	DurationMillis float64 `json:"duration_ms"`
}

// ParseResult is the outcome of flattening a webhook payload into events.
// Success is true exactly when no entry failed.
type ParseResult struct {
	Success  bool                  `json:"success"`
	Events   []models.WebhookEvent `json:"events"`
	Errors   []EntryError          `json:"errors"`
	Metadata ParseMetadata         `json:"metadata"`
}

// Parser flattens webhook payloads into ordered event lists. The clock is
// injectable so tests can pin the fallback timestamp.
type Parser struct {
	now func() time.Time
}

// NewParser constructs a Parser using the wall clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// ParseJSON decodes raw and parses it. A body that does not decode into the
// envelope at all is the catastrophic case: success=false, zero events and
// zero-entry metadata.
func (p *Parser) ParseJSON(raw []byte) ParseResult {
	start := p.now()

	var payload models.WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ParseResult{
			Success: false,
			Events:  []models.WebhookEvent{},
			Errors: []EntryError{{
				Reason: fmt.Sprintf("payload does not decode: %v", err),
			}},
			Metadata: ParseMetadata{
				DurationMillis: elapsedMillis(start, p.now()),
			},
		}
	}

	return p.parseFrom(payload, start)
}

// Parse flattens a decoded payload. One failing entry never discards the
// rest: its events are dropped, an EntryError is recorded, and parsing moves
// on to the next entry.
func (p *Parser) Parse(payload models.WebhookPayload) ParseResult {
	return p.parseFrom(payload, p.now())
}

func (p *Parser) parseFrom(payload models.WebhookPayload, start time.Time) ParseResult {
	result := ParseResult{
		Events: []models.WebhookEvent{},
		Errors: []EntryError{},
	}
	result.Metadata.TotalEntries = len(payload.Entry)

	for _, entry := range payload.Entry {
		events, err := p.parseEntry(entry, start)
		if err != nil {
			result.Errors = append(result.Errors, EntryError{
				EntryID:  entry.ID,
				Reason:   err.Error(),
				RawEntry: entry,
			})
			continue
		}
		result.Events = append(result.Events, events...)
		result.Metadata.ParsedEntries++
	}

	result.Success = len(result.Errors) == 0
	result.Metadata.TotalEvents = len(result.Events)
	result.Metadata.DurationMillis = elapsedMillis(start, p.now())
	return result
}

// parseEntry flattens a single entry. A panic inside the entry is contained
// here so one corrupt entry cannot take down the batch.
func (p *Parser) parseEntry(entry models.WebhookEntry, fallback time.Time) (events []models.WebhookEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = fmt.Errorf("entry panicked: %v", r)
		}
	}()

	if entry.ID == "" {
		return nil, errors.New("entry is missing id")
	}

	for _, change := range entry.Changes {
		value := change.Value
		phoneNumberID := value.Metadata.PhoneNumberID

		for _, msg := range value.Messages {
			message := msg
			events = append(events, models.WebhookEvent{
				Type:          models.EventMessageReceived,
				Timestamp:     eventTime(msg.Timestamp, fallback),
				PhoneNumberID: phoneNumberID,
				Message:       &message,
				Contact:       matchContact(value.Contacts, msg.From),
			})
		}

		for _, st := range value.Statuses {
			status := st
			events = append(events, models.WebhookEvent{
				Type:          models.EventMessageStatus,
				Timestamp:     eventTime(st.Timestamp, fallback),
				PhoneNumberID: phoneNumberID,
				Status:        &status,
			})
		}

		for _, we := range value.Errors {
			webhookErr := we
			events = append(events, models.WebhookEvent{
				Type:          models.EventWebhookError,
				Timestamp:     fallback,
				PhoneNumberID: phoneNumberID,
				Error:         &webhookErr,
			})
		}
	}

	return events, nil
}

// eventTime converts the vendor's unix-seconds timestamp, falling back to the
// time captured at the start of the parse call when the field is absent or
// unparseable.
func eventTime(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(seconds, 0).UTC()
}

// matchContact returns the first contact whose wa_id matches the sender, or
// nil when the payload carries no matching contact record.
func matchContact(contacts []models.Contact, from string) *models.Contact {
	for _, contact := range contacts {
		if contact.WaID == from {
			matched := contact
			return &matched
		}
	}
	return nil
}

func elapsedMillis(start, end time.Time) float64 {
	return float64(end.Sub(start).Nanoseconds()) / float64(time.Millisecond)
}
