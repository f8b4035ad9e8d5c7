package server

import (
	"context"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the gRPC health service name reported for the payment API
const HealthServiceName = "lotterypay.PaymentService"

// GRPCHealthServer exposes grpc.health.v1 for orchestrator health checks
type GRPCHealthServer struct {
	server   *grpc.Server
	health   *health.Server
	checker  HealthChecker
	listener net.Listener
	interval time.Duration
	stop     chan struct{}
}

// NewGRPCHealthServer creates a health server; checker may be nil to always report serving
func NewGRPCHealthServer(checker HealthChecker) *GRPCHealthServer {
	hs := health.NewServer()
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	return &GRPCHealthServer{
		server:   s,
		health:   hs,
		checker:  checker,
		interval: 10 * time.Second,
		stop:     make(chan struct{}),
	}
}

// Start listens on port and serves in the background
func (g *GRPCHealthServer) Start(port string) error {
	listener, err := net.Listen("tcp", net.JoinHostPort("", port))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC health on %s: %w", port, err)
	}
	g.listener = listener

	g.refresh()
	go g.watch()

	go func() {
		log.WithField("addr", listener.Addr().String()).Info("gRPC health server listening")
		if err := g.server.Serve(listener); err != nil {
			log.WithError(err).Error("gRPC health server stopped")
		}
	}()
	return nil
}

// Addr returns the bound listener address
func (g *GRPCHealthServer) Addr() string {
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Shutdown reports NOT_SERVING and stops the server
func (g *GRPCHealthServer) Shutdown() {
	close(g.stop)
	g.health.Shutdown()
	g.server.GracefulStop()
}

func (g *GRPCHealthServer) watch() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.refresh()
		}
	}
}

func (g *GRPCHealthServer) refresh() {
	status := healthpb.HealthCheckResponse_SERVING
	if g.checker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := g.checker.Healthy(ctx)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Database unhealthy, reporting NOT_SERVING")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(HealthServiceName, status)
}
