package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	usersv1 "github.com/rai/dualstack-users/api/users/v1"
	"github.com/rai/dualstack-users/internal/platform/commandbus"
	"github.com/rai/dualstack-users/internal/platform/config"
	"github.com/rai/dualstack-users/internal/platform/eventbus"
	"github.com/rai/dualstack-users/internal/platform/grpcserver"
	"github.com/rai/dualstack-users/internal/platform/httpserver"
	"github.com/rai/dualstack-users/internal/platform/spanner"
	"github.com/rai/dualstack-users/internal/platform/steering"
	"github.com/rai/dualstack-users/modules/notifications"
	"github.com/rai/dualstack-users/modules/users"
	"github.com/rai/dualstack-users/modules/users/application/commands"
	"github.com/rai/dualstack-users/modules/users/domain"
	userspersistence "github.com/rai/dualstack-users/modules/users/infrastructure/persistence"
)

// app is the wired server: one listener, steered to the HTTP router or the
// gRPC server, plus the users module's command worker.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	users  users.Module
	grpc   *grpcserver.Server
	server *httpserver.Server
}

func newApp(cfg config.Config, repo domain.UserRepository, logger *slog.Logger) (*app, error) {
	// Initialize event bus (for inter-module communication)
	eventBus := eventbus.New(logger)

	// Initialize modules
	// Each module subscribes to events it cares about internally
	if _, err := notifications.New(notifications.Config{
		EventSubscriber: eventBus,
		Logger:          logger,
	}); err != nil {
		return nil, err
	}

	usersModule := users.New(users.Config{
		Repository:     repo,
		EventPublisher: eventBus,
		Logger:         logger,
		WriteMode:      users.WriteMode(cfg.WriteMode),
		BusOptions: []commandbus.Option[commands.Message]{
			commandbus.WithCapacity[commands.Message](cfg.BusCapacity),
		},
	})

	// gRPC side
	grpcServer := grpcserver.New(logger)
	usersModule.RegisterGRPC(grpcServer)
	grpcServer.SetServing("")
	grpcServer.SetServing(usersv1.UserService_ServiceDesc.ServiceName)

	// HTTP side
	router := buildRouter(usersModule)
	httpHandler := httpserver.Middleware(
		otelhttp.NewHandler(router, "users.http"),
		httpserver.Recovery(logger),
		httpserver.Logging(logger),
		steering.RejectWeb,
	)

	handler := steering.New(steering.ByContentType, logger, httpHandler, grpcServer)

	httpCfg := httpserver.DefaultConfig()
	httpCfg.Port = cfg.Port

	return &app{
		cfg:    cfg,
		logger: logger,
		users:  usersModule,
		grpc:   grpcServer,
		server: httpserver.New(httpCfg, handler, logger),
	}, nil
}

// buildRouter creates the main HTTP router with all module handlers.
func buildRouter(usersModule users.Module) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Each module registers its own routes
	usersModule.RegisterRoutes(mux)

	return mux
}

// ListenAndServe listens on the configured port and calls Serve.
func (a *app) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the server and the command worker until ctx is canceled, then
// shuts down: stop accepting requests, close the command bus, and wait for
// the worker to drain it.
func (a *app) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The worker stops when the bus is closed, not when ctx is canceled,
		// so commands already accepted still run.
		return a.users.Run(context.WithoutCancel(gctx))
	})

	g.Go(func() error {
		return a.server.Serve(ln)
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *app) shutdown() error {
	a.logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	// Health checks report NOT_SERVING while in-flight requests finish.
	a.grpc.Shutdown()

	err := a.server.Shutdown(ctx)
	if err != nil {
		a.logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Later sends get ErrClosed; the worker drains what is queued and exits.
	a.users.Close()
	return err
}

// newUsersRepository picks the storage backend. The returned close function
// releases it.
func newUsersRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.UserRepository, func(), error) {
	switch cfg.Storage {
	case config.StorageSpanner:
		spannerCfg := cfg.Spanner()
		client, err := spanner.NewClient(ctx, spannerCfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to spanner", slog.String("dsn", spannerCfg.DSN()))
		return userspersistence.NewSpannerRepository(client), client.Close, nil
	default:
		logger.Warn("using in-memory storage; data is lost on restart")
		return userspersistence.NewInMemoryRepository(), func() {}, nil
	}
}
