// Package notifications reacts to events published by other modules.
package notifications

import (
	"fmt"
	"log/slog"

	"github.com/rai/dualstack-users/modules/notifications/application/eventhandlers"
	"github.com/rai/dualstack-users/modules/shared/events"
	"github.com/rai/dualstack-users/modules/shared/events/contracts"
)

// Module represents the notification module entry point.
type Module struct {
	userCreated *eventhandlers.UserCreatedHandler
}

type Config struct {
	EventSubscriber events.Subscriber
	Logger          *slog.Logger
}

// New initializes the notification module and subscribes to events.
func New(cfg Config) (*Module, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "notifications")

	// Initialize event handlers
	userCreatedHandler := eventhandlers.NewUserCreatedHandler(logger)

	// Subscribe to events
	if err := cfg.EventSubscriber.Subscribe(contracts.UserCreatedEventType, userCreatedHandler); err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", contracts.UserCreatedEventType, err)
	}

	return &Module{userCreated: userCreatedHandler}, nil
}

// WelcomeSent reports whether the welcome notification for the given
// UserCreated event ID was sent.
func (m *Module) WelcomeSent(eventID string) bool {
	return m.userCreated.Sent(eventID)
}
