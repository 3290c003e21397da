package grpc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"cifra/api/internal/core/domain"
	grpcdelivery "cifra/api/internal/delivery/grpc"
)

type stubService struct {
	selfTestErr error
}

func (stubService) Ciphers() []domain.CipherInfo { return nil }

func (stubService) Transform(ctx context.Context, req domain.TransformRequest) (domain.Result, error) {
	return domain.Result{}, nil
}

func (s stubService) SelfTest(ctx context.Context) error { return s.selfTestErr }

func startHealthServer(t *testing.T, svc domain.CipherService) healthpb.HealthClient {
	t.Helper()

	hs := grpcdelivery.NewHealthServer(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hs.Probe(context.Background())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go hs.Serve(lis)
	t.Cleanup(hs.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestHealthServer_Serving(t *testing.T) {
	client := startHealthServer(t, stubService{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, service := range []string{"", grpcdelivery.ServiceName} {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestHealthServer_NotServingWhenSelfTestFails(t *testing.T) {
	client := startHealthServer(t, stubService{selfTestErr: errors.New("vector mismatch")})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
