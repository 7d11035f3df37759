package domain

import (
	"github.com/rai/dualstack-users/modules/shared/events"
	"github.com/rai/dualstack-users/modules/shared/events/contracts"
)

// UserCreatedEventType is re-exported so the module's own code does not
// need to reach into the contracts package for the constant.
const UserCreatedEventType = contracts.UserCreatedEventType

// NewUserCreatedEvent records that user was created. The event carries the
// same id, username and email as the stored user.
func NewUserCreatedEvent(user *User) contracts.UserCreatedEvent {
	return contracts.UserCreatedEvent{
		BaseEvent: events.NewBaseEvent(UserCreatedEventType, user.ID().String()),
		UserID:    user.ID().String(),
		Username:  user.Username(),
		Email:     user.Email(),
	}
}
