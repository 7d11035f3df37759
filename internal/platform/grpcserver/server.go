// Package grpcserver builds the gRPC server mounted behind the steering
// layer. The server is not given its own listener: it is used as an
// http.Handler on the shared h2c listener.
package grpcserver

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Server pairs a grpc.Server with its health service.
type Server struct {
	*grpc.Server
	health *health.Server
}

// New creates a gRPC server with tracing, panic recovery and request logging.
func New(logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		),
	}
	srv := grpc.NewServer(append(base, opts...)...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{Server: srv, health: hs}
}

// SetServing marks service (or the whole server when service is "") as
// serving in the health service.
func (s *Server) SetServing(service string) {
	s.health.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown marks every service as not serving. The connections belong to
// the HTTP server, whose own shutdown lets in-flight calls finish; stopping
// the grpc.Server here would cancel them.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

// LoggingInterceptor logs one line per unary call.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.InfoContext(ctx, "grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)))
		return resp, err
	}
}

// RecoveryInterceptor turns a handler panic into codes.Internal.
func RecoveryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered",
					slog.Any("panic", rec),
					slog.String("method", info.FullMethod))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
