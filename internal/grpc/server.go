package grpcserver

import (
	"context"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"chronoManager/internal/auth"
	"chronoManager/internal/config"
	"chronoManager/repository"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// NewServer builds a gRPC server exposing the AttendanceService over store,
// with request logging, JWT authentication and the standard health service.
func NewServer(secret string, store *repository.Store, logger *log.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		NewUnaryLoggingInterceptor(logger),
		auth.NewUnaryAuthInterceptor(secret, healthCheckMethod),
	))

	RegisterAttendanceServiceServer(srv, &Server{Users: store.Users, Attendance: store.Attendance})

	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, store *repository.Store) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = "127.0.0.1:50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := NewServer(cfg.Auth.JWTSecret, store, log.Default())
	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
