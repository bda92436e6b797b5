package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// BaseEvent is a basic implementation of the Event interface
type BaseEvent struct {
	ID    string                 `json:"id"`
	Type  string                 `json:"type"`
	Time  int64                  `json:"timestamp"`
	AggID string                 `json:"aggregate_id"`
	Data  map[string]interface{} `json:"data"`
}

// NewEvent creates a new event
func NewEvent(eventType string, data map[string]interface{}) *BaseEvent {
	return NewAggregateEvent(eventType, "", data)
}

// NewAggregateEvent creates a new event with an aggregate ID
func NewAggregateEvent(eventType string, aggregateID string, data map[string]interface{}) *BaseEvent {
	return &BaseEvent{
		ID:    uuid.NewString(),
		Type:  eventType,
		Time:  time.Now().UnixNano(),
		AggID: aggregateID,
		Data:  data,
	}
}

// EventID returns the unique id of the event
func (e *BaseEvent) EventID() string {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseEvent) EventType() string {
	return e.Type
}

// Timestamp returns when the event occurred
func (e *BaseEvent) Timestamp() int64 {
	return e.Time
}

// AggregateID returns the ID of the aggregate that produced the event
func (e *BaseEvent) AggregateID() string {
	return e.AggID
}

// Payload returns the event data
func (e *BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

// Envelope is the transport form of an event used by broker forwarders.
type Envelope struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	AggregateID string                 `json:"aggregate_id,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Data        map[string]interface{} `json:"data"`
}

// ToEnvelope converts any event into its transport form.
func ToEnvelope(e interfaces.Event) Envelope {
	return Envelope{
		ID:          e.EventID(),
		Type:        e.EventType(),
		AggregateID: e.AggregateID(),
		OccurredAt:  time.Unix(0, e.Timestamp()).UTC(),
		Data:        e.Payload(),
	}
}
