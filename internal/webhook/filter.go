package webhook

import (
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
)

// Filter returns the order-preserving subsequence of events matching every
// supplied criterion. Unset criteria accept everything, so an empty filter
// returns the input unchanged.
func Filter(events []models.WebhookEvent, criteria models.EventFilter) []models.WebhookEvent {
	if criteria.IsZero() {
		return events
	}

	filtered := make([]models.WebhookEvent, 0, len(events))
	for _, event := range events {
		if matches(event, criteria) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// FilterStored applies the same criteria to persisted events, keeping the
// ingest bookkeeping (BatchID, ReceivedAt) on the survivors.
func FilterStored(stored []models.StoredEvent, criteria models.EventFilter) []models.StoredEvent {
	if criteria.IsZero() {
		return stored
	}

	filtered := make([]models.StoredEvent, 0, len(stored))
	for _, doc := range stored {
		if matches(doc.Event(), criteria) {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}

func matches(event models.WebhookEvent, criteria models.EventFilter) bool {
	if len(criteria.EventTypes) > 0 && !containsType(criteria.EventTypes, event.Type) {
		return false
	}

	if len(criteria.PhoneNumberIDs) > 0 && !containsString(criteria.PhoneNumberIDs, event.PhoneNumberID) {
		return false
	}

	// Sender criteria only constrain events that actually carry a sender;
	// status and error events pass through.
	if sender := event.Sender(); sender != "" {
		if len(criteria.Senders) > 0 && !containsString(criteria.Senders, sender) {
			return false
		}
		if containsString(criteria.ExcludeSenders, sender) {
			return false
		}
	}

	if criteria.After != nil || criteria.Before != nil {
		// An event without a usable timestamp cannot satisfy a bounded range.
		if event.Timestamp.IsZero() {
			return false
		}
		if criteria.After != nil && event.Timestamp.Before(*criteria.After) {
			return false
		}
		if criteria.Before != nil && event.Timestamp.After(*criteria.Before) {
			return false
		}
	}

	return true
}

func containsType(haystack []models.EventType, needle models.EventType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
