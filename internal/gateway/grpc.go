// ABOUTME: gRPC health service for load balancers and orchestrators
// ABOUTME: Reports overall status and one service entry per registered platform

package gateway

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// toolsService is the health service name covering tool dispatch.
const toolsService = "herald.tools"

// registerHealthService attaches the standard grpc.health.v1 service.
func registerHealthService(server *grpc.Server, hs *health.Server) {
	healthpb.RegisterHealthServer(server, hs)
}

// updateHealth sets the serving status from the readiness check.
func (g *Gateway) updateHealth(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := g.ready(ctx); err != nil {
		g.logger.Warn("gateway not ready", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(toolsService, status)
	for _, d := range g.directories {
		g.health.SetServingStatus(toolsService+"."+d.Platform(), status)
	}
}
