package models

import "time"

// EventFilter holds caller-supplied selection criteria. Every field is
// optional; an unset field imposes no constraint. The form tags let the
// query API bind the filter straight from request parameters.
type EventFilter struct {
	EventTypes     []EventType `form:"type" json:"event_types,omitempty"`
	PhoneNumberIDs []string    `form:"phone_number_id" json:"phone_number_ids,omitempty"`
	Senders        []string    `form:"sender" json:"senders,omitempty"`
	ExcludeSenders []string    `form:"exclude_sender" json:"exclude_senders,omitempty"`
	After          *time.Time  `form:"after" time_format:"2006-01-02T15:04:05Z07:00" json:"after,omitempty"`
	Before         *time.Time  `form:"before" time_format:"2006-01-02T15:04:05Z07:00" json:"before,omitempty"`
}

// IsZero reports whether no criteria are set at all.
func (f EventFilter) IsZero() bool {
	return len(f.EventTypes) == 0 &&
		len(f.PhoneNumberIDs) == 0 &&
		len(f.Senders) == 0 &&
		len(f.ExcludeSenders) == 0 &&
		f.After == nil &&
		f.Before == nil
}
