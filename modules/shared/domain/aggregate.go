// Package domain provides shared domain primitives.
package domain

import (
	"slices"

	"github.com/rai/dualstack-users/modules/shared/events"
)

// AggregateRoot collects the events an aggregate raises until they are
// recorded. Embed it in aggregate structs.
type AggregateRoot struct {
	pending []events.Event
}

// AddDomainEvent queues event for recording.
func (a *AggregateRoot) AddDomainEvent(event events.Event) {
	a.pending = append(a.pending, event)
}

// DomainEvents returns a copy of the pending events in the order raised.
func (a *AggregateRoot) DomainEvents() []events.Event {
	return slices.Clone(a.pending)
}

// ClearDomainEvents drops the pending events once they are recorded.
func (a *AggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
