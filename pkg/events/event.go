// Package events defines the domain events published on the bus and turned
// into user notifications.
package events

import "time"

type Event interface {
	// EventType is one of the codes in types.go, e.g. MIRROR_COMPLETED.
	EventType() string
	// Payload carries user_id (the recipient) plus type-specific keys.
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New stamps an event with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
