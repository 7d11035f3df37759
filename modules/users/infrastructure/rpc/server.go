// Package rpc provides the gRPC front end of the users module.
// It translates users.v1 messages into commands/queries and maps errors to
// gRPC status codes.
package rpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	usersv1 "github.com/rai/dualstack-users/api/users/v1"
	"github.com/rai/dualstack-users/internal/platform/commandbus"
	"github.com/rai/dualstack-users/modules/users/application/commands"
	"github.com/rai/dualstack-users/modules/users/application/queries"
	"github.com/rai/dualstack-users/modules/users/domain"
)

// Server implements usersv1.UserServiceServer.
type Server struct {
	usersv1.UnimplementedUserServiceServer

	sender  commands.Sender
	getUser *queries.GetUserHandler
	logger  *slog.Logger
}

// NewServer creates the gRPC front end.
func NewServer(sender commands.Sender, getUser *queries.GetUserHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sender:  sender,
		getUser: getUser,
		logger:  logger,
	}
}

// Compile-time interface check.
var _ usersv1.UserServiceServer = (*Server)(nil)

// CreateUser accepts a create command. The empty response means the command
// was enqueued (or, with a synchronous sender, persisted).
func (s *Server) CreateUser(ctx context.Context, in *usersv1.CreateUserRequest) (*usersv1.CreateUserResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "create user request is required")
	}

	cmd := commands.CreateUserCommand{
		Username: in.GetUsername(),
		Email:    in.GetEmail(),
	}

	if _, err := s.sender.Send(ctx, cmd); err != nil {
		return nil, s.toStatus(ctx, "create user", err)
	}
	return &usersv1.CreateUserResponse{}, nil
}

// GetUser returns one user by ID.
func (s *Server) GetUser(ctx context.Context, in *usersv1.GetUserRequest) (*usersv1.GetUserResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get user request is required")
	}

	user, found, err := s.getUser.Handle(ctx, queries.GetUserQuery{UserID: in.GetId()})
	if err != nil {
		return nil, s.toStatus(ctx, "get user", err)
	}
	if !found {
		return nil, status.Error(codes.NotFound, "user not found")
	}

	return &usersv1.GetUserResponse{
		Id:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

func (s *Server) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrUsernameRequired),
		errors.Is(err, domain.ErrEmailRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, commandbus.ErrClosed):
		return status.Error(codes.Unavailable, "not accepting commands")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.ErrorContext(ctx, op+" failed", slog.Any("error", err))
		return status.Error(codes.Internal, "internal error")
	}
}
