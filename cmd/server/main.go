// Package main is the entry point for the users service.
// It wires together all modules and serves HTTP and gRPC on one port.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rai/dualstack-users/internal/platform/config"
	"github.com/rai/dualstack-users/internal/platform/otel"
)

const serviceName = "users"

func main() {
	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error("failed to parse config", slog.Any("error", err))
		os.Exit(2)
	}

	// Initialize logger
	slogOptions := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	slogJsonHandler := slog.NewJSONHandler(os.Stdout, slogOptions)
	logger := slog.New(slogJsonHandler)
	slog.SetDefault(logger)

	logger.Info("starting users service",
		slog.String("write_mode", cfg.WriteMode),
		slog.String("storage", cfg.Storage))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing shutdown error", slog.Any("error", err))
		}
	}()

	repo, closeRepo, err := newUsersRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	// Storage outlives the worker: it is closed only after the bus drained.
	defer closeRepo()

	a, err := newApp(cfg, repo, logger)
	if err != nil {
		return err
	}
	return a.ListenAndServe(ctx)
}
