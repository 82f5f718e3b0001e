package grpc

import (
	"context"

	"github.com/rs/zerolog/log"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "questionnaire.Insights"

// CheckHealth runs every probe and publishes the overall status for both the
// server and the insights service.
func (v *App) CheckHealth(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, check := range v.checks {
		if err := check.Probe(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", check.Name).Msg("An error occurred when probing dependency health...")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	v.health.SetServingStatus("", status)
	v.health.SetServingStatus(ServiceName, status)
	return status
}
