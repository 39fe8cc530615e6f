package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "career.Ingest"

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// HealthServer serves grpc.health.v1 and flips to NOT_SERVING while any probe fails.
type HealthServer struct {
	grpc     *grpc.Server
	health   *health.Server
	probes   map[string]Probe
	interval time.Duration
	logger   *slog.Logger
}

func NewHealthServer(probes map[string]Probe, interval time.Duration, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	// Reflection for grpcurl
	reflection.Register(gs)
	return &HealthServer{grpc: gs, health: hs, probes: probes, interval: interval, logger: logger}
}

// Check runs every probe once and publishes the result.
func (h *HealthServer) Check(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	for name, probe := range h.probes {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := probe(pctx)
		cancel()
		if err != nil {
			h.logger.Warn("health probe failed", "probe", name, "error", err)
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", st)
	h.health.SetServingStatus(ServiceName, st)
	return st
}

// Serve listens on addr until ctx is cancelled, then stops gracefully.
func (h *HealthServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		h.logger.Error("failed to listen on address", "addr", addr, "error", err)
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return h.ServeListener(ctx, lis)
}

func (h *HealthServer) ServeListener(ctx context.Context, lis net.Listener) error {
	h.Check(ctx)
	go h.probeLoop(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- h.grpc.Serve(lis) }()
	h.logger.Info("health server listening", "addr", lis.Addr().String())

	select {
	case <-ctx.Done():
		h.health.Shutdown()
		h.grpc.GracefulStop()
		h.logger.Info("health server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			h.logger.Error("gRPC serve error", "error", err)
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	}
}

func (h *HealthServer) probeLoop(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Check(ctx)
		}
	}
}
