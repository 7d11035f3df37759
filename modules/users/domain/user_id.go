package domain

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidUserID indicates the user ID format is invalid.
var ErrInvalidUserID = errors.New("invalid user ID format")

// UserID represents a unique identifier for a user.
// New IDs are UUIDv7, so they sort by creation time.
type UserID struct {
	value uuid.UUID
}

func NewUserID() UserID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		panic(err)
	}
	return UserID{value: id}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, ErrInvalidUserID
	}
	return UserID{value: id}, nil
}

func (id UserID) UUID() uuid.UUID { return id.value }
func (id UserID) String() string  { return id.value.String() }
func (id UserID) IsZero() bool    { return id.value == uuid.Nil }
