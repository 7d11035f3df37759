// Package config loads server configuration from the environment, with
// command-line flags taking precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/rai/dualstack-users/internal/platform/spanner"
)

// Storage backends.
const (
	StorageMemory  = "memory"
	StorageSpanner = "spanner"
)

// Write modes.
const (
	WriteModeAsync = "async"
	WriteModeSync  = "sync"
)

// Config holds server configuration.
type Config struct {
	Port            int           `env:"USERS_PORT" envDefault:"8080"`
	WriteMode       string        `env:"USERS_WRITE_MODE" envDefault:"async"`
	BusCapacity     int           `env:"USERS_BUS_CAPACITY" envDefault:"32"`
	Storage         string        `env:"USERS_STORAGE" envDefault:"memory"`
	LogLevel        slog.Level    `env:"USERS_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"USERS_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	OTelEndpoint    string        `env:"USERS_OTEL_ENDPOINT"`

	SpannerProjectID    string `env:"SPANNER_PROJECT_ID" envDefault:"local-project"`
	SpannerInstanceID   string `env:"SPANNER_INSTANCE_ID" envDefault:"local-instance"`
	SpannerDatabaseID   string `env:"SPANNER_DATABASE_ID" envDefault:"users-db"`
	SpannerEmulatorHost string `env:"SPANNER_EMULATOR_HOST"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP and gRPC listen port")
	fs.StringVar(&cfg.WriteMode, "write-mode", cfg.WriteMode, "How create commands are executed: async or sync")
	fs.IntVar(&cfg.BusCapacity, "bus-capacity", cfg.BusCapacity, "Commands buffered before senders block")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "The storage backend: memory or spanner")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "The minimum log level")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "How long to wait for in-flight work on shutdown")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "The OTLP/HTTP trace endpoint URL; empty disables tracing")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.WriteMode != WriteModeAsync && c.WriteMode != WriteModeSync {
		errs = append(errs, fmt.Errorf("unknown write mode %q", c.WriteMode))
	}
	if c.BusCapacity < 1 {
		errs = append(errs, fmt.Errorf("bus capacity must be positive, got %d", c.BusCapacity))
	}
	if c.Storage != StorageMemory && c.Storage != StorageSpanner {
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Spanner returns the Spanner connection settings.
func (c Config) Spanner() spanner.Config {
	return spanner.Config{
		ProjectID:    c.SpannerProjectID,
		InstanceID:   c.SpannerInstanceID,
		DatabaseID:   c.SpannerDatabaseID,
		EmulatorHost: c.SpannerEmulatorHost,
	}
}
