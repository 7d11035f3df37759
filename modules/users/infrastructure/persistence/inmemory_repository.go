// Package persistence implements repository interfaces using specific storage backends.
// This is the outermost layer - it implements ports defined in the domain layer.
package persistence

import (
	"context"
	"sync"

	"github.com/rai/dualstack-users/modules/shared/events"
	"github.com/rai/dualstack-users/modules/users/domain"
)

// InMemoryRepository implements UserRepository using in-memory storage.
// Useful for testing and development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  map[domain.UserID]*domain.User
	order  []domain.UserID
	events []events.Event
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: make(map[domain.UserID]*domain.User),
	}
}

// Compile-time interface check.
var _ domain.UserRepository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) SaveUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy without the pending domain events.
	r.users[user.ID()] = domain.Reconstitute(user.ID(), user.Username(), user.Email())
	r.order = append(r.order, user.ID())
	return nil
}

func (r *InMemoryRepository) SaveEvent(ctx context.Context, event events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *InMemoryRepository) FindUserByID(ctx context.Context, id domain.UserID) (*domain.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, false, nil
	}
	return user, true, nil
}

// Users returns the stored users in insertion order.
func (r *InMemoryRepository) Users() []*domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users
}

// Events returns the event log in append order.
func (r *InMemoryRepository) Events() []events.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]events.Event, len(r.events))
	copy(result, r.events)
	return result
}
