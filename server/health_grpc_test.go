package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func dialHealth(t *testing.T, hs *GRPCHealthServer) healthpb.HealthClient {
	t.Helper()

	_, port, err := net.SplitHostPort(hs.Addr())
	require.NoError(t, err)

	conn, err := grpc.NewClient(net.JoinHostPort("127.0.0.1", port), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestGRPCHealthServer_ReportsDatabaseState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want healthpb.HealthCheckResponse_ServingStatus
	}{
		{name: "serving", want: healthpb.HealthCheckResponse_SERVING},
		{name: "database down", err: errors.New("connection refused"), want: healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hs := NewGRPCHealthServer(stubHealth{err: tt.err})
			require.NoError(t, hs.Start("0"))
			t.Cleanup(hs.Shutdown)

			client := dialHealth(t, hs)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			for _, service := range []string{"", HealthServiceName} {
				resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
				require.NoError(t, err)
				assert.Equal(t, tt.want, resp.GetStatus(), "service %q", service)
			}
		})
	}
}

func TestGRPCHealthServer_NilCheckerServes(t *testing.T) {
	t.Parallel()

	hs := NewGRPCHealthServer(nil)
	require.NoError(t, hs.Start("0"))
	t.Cleanup(hs.Shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := dialHealth(t, hs).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
