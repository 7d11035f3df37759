// Package spanner provides Cloud Spanner client initialization.
package spanner

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds Spanner connection configuration.
type Config struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
	// EmulatorHost, when set, connects to a Spanner emulator at host:port
	// without TLS or credentials.
	EmulatorHost string
}

// DSN returns the Spanner database connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s",
		c.ProjectID, c.InstanceID, c.DatabaseID)
}

// ClientOptions returns the connection options implied by the config.
func (c Config) ClientOptions() []option.ClientOption {
	if c.EmulatorHost == "" {
		return nil
	}
	return []option.ClientOption{
		option.WithEndpoint(c.EmulatorHost),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

// NewClient creates a new Spanner client from config.
// The caller is responsible for closing the client when done.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*spanner.Client, error) {
	opts = append(cfg.ClientOptions(), opts...)
	client, err := spanner.NewClient(ctx, cfg.DSN(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create spanner client: %w", err)
	}
	return client, nil
}
