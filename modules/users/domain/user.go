// Package domain contains the business entities and rules for users.
// This is the innermost layer - it has no dependencies on outer layers.
package domain

import (
	"strings"

	shareddomain "github.com/rai/dualstack-users/modules/shared/domain"
)

// User is the aggregate root for the user bounded context.
// Users are immutable once created.
type User struct {
	shareddomain.AggregateRoot

	id       UserID
	username string
	email    string
}

// NewUser creates a User with a freshly assigned ID.
// Adds UserCreatedEvent to be recorded after persistence.
func NewUser(username, email string) (*User, error) {
	username, email, err := RequireFields(username, email)
	if err != nil {
		return nil, err
	}

	u := &User{
		id:       NewUserID(),
		username: username,
		email:    email,
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// Reconstitute recreates a User from persistence.
// Used by repositories to rebuild aggregates from stored data.
func Reconstitute(id UserID, username, email string) *User {
	return &User{
		id:       id,
		username: username,
		email:    email,
	}
}

// RequireFields checks that both fields are present and returns them trimmed.
// Format is deliberately not checked.
func RequireFields(username, email string) (string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return "", "", ErrUsernameRequired
	}
	if email == "" {
		return "", "", ErrEmailRequired
	}
	return username, email, nil
}

// Getters - expose state without allowing direct mutation
func (u *User) ID() UserID       { return u.id }
func (u *User) Username() string { return u.username }
func (u *User) Email() string    { return u.email }
