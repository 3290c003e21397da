package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"cifra/api/internal/core/domain"
)

// ServiceName is the health service name reported alongside the overall "" entry.
const ServiceName = "cifra.v1.CipherService"

// HealthServer exposes grpc.health.v1 and keeps its status in sync with the
// cipher engine self-test.
type HealthServer struct {
	server  *grpc.Server
	health  *health.Server
	service domain.CipherService
	logger  *slog.Logger
}

func NewHealthServer(service domain.CipherService, logger *slog.Logger) *HealthServer {
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &HealthServer{
		server:  srv,
		health:  hs,
		service: service,
		logger:  logger,
	}
}

// Probe runs the self-test once and publishes the result.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.service.SelfTest(ctx); err != nil {
		s.logger.Error("Cipher self-test failed", slog.String("error", err.Error()))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch re-probes on every tick until ctx is done.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	s.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Serve blocks until the listener fails or Stop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
