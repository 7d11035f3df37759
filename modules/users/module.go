// Package users provides user management functionality.
// This file defines the module's public API - the single interface
// that the server uses to wire the users bounded context.
package users

import (
	"context"
	"log/slog"
	"net/http"

	"google.golang.org/grpc"

	usersv1 "github.com/rai/dualstack-users/api/users/v1"
	"github.com/rai/dualstack-users/internal/platform/commandbus"
	"github.com/rai/dualstack-users/modules/shared/events"
	"github.com/rai/dualstack-users/modules/users/application/commands"
	"github.com/rai/dualstack-users/modules/users/application/queries"
	"github.com/rai/dualstack-users/modules/users/domain"
	httphandler "github.com/rai/dualstack-users/modules/users/infrastructure/http"
	"github.com/rai/dualstack-users/modules/users/infrastructure/rpc"
)

// WriteMode selects how create commands reach the domain.
type WriteMode string

const (
	// WriteModeAsync enqueues commands on the command bus; a single worker
	// executes them later.
	WriteModeAsync WriteMode = "async"
	// WriteModeSync executes commands in the request goroutine.
	WriteModeSync WriteMode = "sync"
)

// Module is the public API for the users bounded context.
// External communication: HTTP API (RegisterRoutes) and gRPC (RegisterGRPC)
// Cross-module communication: Domain Events (published after each create)
type Module interface {
	// RegisterRoutes registers the module's HTTP routes to the given mux.
	RegisterRoutes(mux *http.ServeMux)
	// RegisterGRPC registers users.v1.UserService.
	RegisterGRPC(s grpc.ServiceRegistrar)
	// Run executes queued commands until Close is called and the queue is
	// drained. In sync mode there is no queue and Run returns immediately.
	Run(ctx context.Context) error
	// Close stops accepting commands. Queued commands are still executed.
	Close()
}

// Config holds the module configuration.
type Config struct {
	Repository     domain.UserRepository
	EventPublisher events.Publisher
	Logger         *slog.Logger
	WriteMode      WriteMode
	// BusOptions are applied to the command bus in async mode.
	BusOptions []commandbus.Option[commands.Message]
}

// module implements the Module interface.
type module struct {
	sender         commands.Sender
	bus            *commandbus.Bus[commands.Message]
	getUserHandler *queries.GetUserHandler
	logger         *slog.Logger
}

// New creates a new users module with all dependencies wired.
// Both front ends share one Sender, and in async mode one command bus.
func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "users")

	// Wire up command handlers
	createUserHandler := commands.NewCreateUserHandler(cfg.Repository, cfg.EventPublisher, logger)
	dispatcher := commands.NewDispatcher(createUserHandler)

	// Wire up query handlers
	getUserHandler := queries.NewGetUserHandler(cfg.Repository)

	m := &module{
		sender:         dispatcher,
		getUserHandler: getUserHandler,
		logger:         logger,
	}

	if cfg.WriteMode != WriteModeSync {
		opts := append([]commandbus.Option[commands.Message]{
			commandbus.WithLogger[commands.Message](logger),
			commandbus.WithNamer(commands.Name),
		}, cfg.BusOptions...)
		m.bus = commandbus.New[commands.Message](dispatcher, opts...)
		m.sender = commands.NewQueuedSender(m.bus)
	}

	return m
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.sender, m.getUserHandler, m.logger)
}

func (m *module) RegisterGRPC(s grpc.ServiceRegistrar) {
	usersv1.RegisterUserServiceServer(s, rpc.NewServer(m.sender, m.getUserHandler, m.logger))
}

func (m *module) Run(ctx context.Context) error {
	if m.bus == nil {
		return nil
	}
	return m.bus.Run(ctx)
}

func (m *module) Close() {
	if m.bus != nil {
		m.bus.Close()
	}
}
