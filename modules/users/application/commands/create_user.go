// Package commands contains write use cases for the users module.
// Commands change state and typically don't return data (except IDs).
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rai/dualstack-users/modules/shared/events"
	"github.com/rai/dualstack-users/modules/users/domain"
)

// CreateUserHandler handles the CreateUserCommand.
type CreateUserHandler struct {
	repo      domain.UserRepository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewCreateUserHandler wires the handler. publisher may be nil.
func NewCreateUserHandler(repo domain.UserRepository, publisher events.Publisher, logger *slog.Logger) *CreateUserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateUserHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the create user use case.
//
// The user row and the event row are written one after the other, not in a
// transaction. When SaveUser fails nothing is written. When SaveEvent fails
// the user row already exists and the error is still returned.
func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (domain.UserID, error) {
	// Create the user aggregate (assigns the ID)
	user, err := domain.NewUser(cmd.Username, cmd.Email)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("invalid command: %w", err)
	}

	// Persist the user
	if err := h.repo.SaveUser(ctx, user); err != nil {
		return domain.UserID{}, fmt.Errorf("saving user: %w", err)
	}

	// Record the events raised by the aggregate
	recorded := user.DomainEvents()
	for _, event := range recorded {
		if err := h.repo.SaveEvent(ctx, event); err != nil {
			return user.ID(), fmt.Errorf("saving event %s for user %s: %w", event.EventType(), user.ID(), err)
		}
	}
	user.ClearDomainEvents()

	// Notify other modules
	if h.publisher != nil {
		for _, event := range recorded {
			if err := h.publisher.Publish(ctx, event); err != nil {
				// The event log is the record; in-process fan-out is best effort.
				h.logger.Warn("publishing event failed",
					slog.String("event_type", event.EventType().String()),
					slog.String("event_id", event.EventID()),
					slog.Any("error", err))
			}
		}
	}

	return user.ID(), nil
}
