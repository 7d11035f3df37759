// Package queries contains read use cases for the users module.
// Queries return data and don't change state (CQRS pattern).
package queries

import (
	"context"
	"fmt"

	"github.com/rai/dualstack-users/modules/users/domain"
)

// UserDTO is a read model for user data.
// DTOs are optimized for reading and decoupled from domain entities.
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// GetUserQuery represents a request to get a user by ID.
type GetUserQuery struct {
	UserID string
}

// GetUserHandler handles GetUserQuery.
// Reads go straight to the repository and never wait for the command bus,
// so a user whose create command is still queued is reported as not found.
type GetUserHandler struct {
	repo domain.UserRepository
}

func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query.
// A missing user yields found == false and a nil error.
func (h *GetUserHandler) Handle(ctx context.Context, query GetUserQuery) (*UserDTO, bool, error) {
	userID, err := domain.ParseUserID(query.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid user ID: %w", err)
	}

	user, found, err := h.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("finding user: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	return toUserDTO(user), true, nil
}

func toUserDTO(user *domain.User) *UserDTO {
	return &UserDTO{
		ID:       user.ID().String(),
		Username: user.Username(),
		Email:    user.Email(),
	}
}
