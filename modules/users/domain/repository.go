package domain

//go:generate mockgen -source=repository.go -destination=mock/repository_mock.go -package=mock

import (
	"context"

	"github.com/rai/dualstack-users/modules/shared/events"
)

// UserRepository defines the persistence interface for users.
// This is a port - defined in domain, implemented in infrastructure.
//
// Implementations must be safe for concurrent use: the command worker
// writes while HTTP and gRPC handlers read.
type UserRepository interface {
	// SaveUser persists a newly created user.
	SaveUser(ctx context.Context, user *User) error

	// SaveEvent appends an event to the event log.
	SaveEvent(ctx context.Context, event events.Event) error

	// FindUserByID retrieves a user by ID.
	// A missing user is reported as found == false with a nil error;
	// err is reserved for storage failures.
	FindUserByID(ctx context.Context, id UserID) (user *User, found bool, err error)
}
