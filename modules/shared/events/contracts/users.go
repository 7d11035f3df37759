// Package contracts defines public event contracts for inter-module communication.
// Modules should import event types from here, NOT from other module's domain packages.
package contracts

import "github.com/rai/dualstack-users/modules/shared/events"

// User module event types.
// These are the "public API" of the users module for event-driven communication.
const (
	UserCreatedEventType events.EventType = "users.UserCreated"
)

// UserCreatedEvent is the public contract for user creation events.
// It is also the payload written to the event log.
type UserCreatedEvent struct {
	events.BaseEvent
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
