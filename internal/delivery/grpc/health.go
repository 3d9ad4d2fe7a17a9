package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name of the payment workflow.
const ServiceName = "paycrew.v1.PaymentWorkflow"

const (
	defaultInterval = 5 * time.Second
	defaultTimeout  = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports the workflow as serving while its database answers pings.
type Health struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(*Health)

func WithInterval(d time.Duration) Option {
	return func(h *Health) {
		if d > 0 {
			h.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Health) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHealth(pinger Pinger, opts ...Option) *Health {
	h := &Health{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: defaultInterval,
		timeout:  defaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// NewServer returns a gRPC server with the health service and reflection
// registered.
func NewServer(h *Health, opts ...grpc.ServerOption) *grpc.Server {
	srv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(srv, h.server)
	reflection.Register(srv)
	return srv
}

// Probe pings the database once and publishes the result.
func (h *Health) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "database ping failed", slog.String("error", err.Error()))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus(ServiceName, status)
	h.server.SetServingStatus("", status)
	return status
}

// Watch probes until ctx is done.
func (h *Health) Watch(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING. Later probes are ignored.
func (h *Health) Shutdown() {
	h.server.Shutdown()
}
