// Package http provides HTTP handlers for the users module.
// Handlers translate HTTP requests into commands/queries and format responses.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rai/dualstack-users/internal/platform/commandbus"
	"github.com/rai/dualstack-users/modules/users/application/commands"
	"github.com/rai/dualstack-users/modules/users/application/queries"
	"github.com/rai/dualstack-users/modules/users/domain"
)

// Handler handles HTTP requests for the users module.
type Handler struct {
	sender  commands.Sender
	getUser *queries.GetUserHandler
	logger  *slog.Logger
}

// RegisterRoutes registers the users module routes to the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	sender commands.Sender,
	getUser *queries.GetUserHandler,
	logger *slog.Logger,
) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		sender:  sender,
		getUser: getUser,
		logger:  logger,
	}

	mux.HandleFunc("POST /users", h.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", h.handleGetUser)
}

// Request/Response DTOs

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type createUserResponse struct {
	ID string `json:"id"`
}

type acceptedResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handlers

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd := commands.CreateUserCommand{
		Username: req.Username,
		Email:    req.Email,
	}

	receipt, err := h.sender.Send(r.Context(), cmd)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	if !receipt.Committed {
		// Queued: the worker assigns the ID later and failures are not reported back.
		writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted"})
		return
	}
	writeJSON(w, http.StatusCreated, createUserResponse{ID: receipt.UserID})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	query := queries.GetUserQuery{UserID: r.PathValue("id")}

	user, found, err := h.getUser.Handle(r.Context(), query)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Helper functions

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrUsernameRequired),
		errors.Is(err, domain.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, commandbus.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "not accepting commands")
	default:
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
