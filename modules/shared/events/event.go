// Package events provides the domain event envelope shared by all modules.
// Events are immutable facts: they are stored next to current state in the
// event log and may additionally be fanned out to in-process subscribers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names an event kind, e.g. "users.UserCreated".
type EventType string

func (t EventType) String() string { return string(t) }

// Event represents a domain event that occurred in the system.
type Event interface {
	// EventID returns the unique identifier for this event instance.
	EventID() string
	// EventType returns the type name of the event.
	EventType() EventType
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event fields. Embed this in concrete event types.
type BaseEvent struct {
	ID          string    `json:"event_id"`
	Type        EventType `json:"event_type"`
	Timestamp   time.Time `json:"occurred_at"`
	AggregateId string    `json:"aggregate_id"`
}

// NewBaseEvent stamps a new envelope. Event ids are UUIDv7 so the event log
// sorts by creation order.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          newEventID(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

// Publisher publishes domain events for other modules to consume.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler handles a specific type of domain event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Subscriber subscribes to domain events.
type Subscriber interface {
	Subscribe(eventType EventType, handler Handler) error
}
