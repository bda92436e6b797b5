// Package healthcheck serves the standard gRPC health protocol next to the
// HTTP API so orchestrators can probe the service without HTTP.
package healthcheck

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/grpc/interceptors"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

const probeTimeout = 2 * time.Second

// Checker reports SERVING while the database answers pings.
type Checker struct {
	health  *health.Server
	db      *gorm.DB
	service string
	logger  interfaces.Logger
}

// NewChecker creates a checker for service. Both service and the empty
// overall name start as NOT_SERVING until the first probe.
func NewChecker(db *gorm.DB, service string, logger interfaces.Logger) *Checker {
	c := &Checker{
		health:  health.NewServer(),
		db:      db,
		service: service,
		logger:  logger,
	}
	c.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

// NewServer builds a gRPC server with the health service registered.
func NewServer(checker *Checker, log interfaces.Logger) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.UnaryRecoveryInterceptor(log),
			logger.UnaryServerInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecoveryInterceptor(log),
			interceptors.StreamLoggingInterceptor(log),
		),
	)
	healthpb.RegisterHealthServer(server, checker.health)
	reflection.Register(server)
	return server
}

// Probe pings the database once and publishes the resulting status.
func (c *Checker) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := database.Ping(ctx, c.db); err != nil {
		c.logger.Warn("health probe failed", interfaces.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.set(status)
	return status
}

// Run probes every interval until ctx is done.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	c.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Probe(ctx)
		}
	}
}

// Shutdown marks everything NOT_SERVING and ends open watches.
func (c *Checker) Shutdown() {
	c.health.Shutdown()
}

func (c *Checker) set(status healthpb.HealthCheckResponse_ServingStatus) {
	c.health.SetServingStatus("", status)
	c.health.SetServingStatus(c.service, status)
}
