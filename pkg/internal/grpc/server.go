package grpc

import (
	"context"
	"net"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthCheck is one dependency probed before the service reports itself as serving.
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

type App struct {
	srv    *grpc.Server
	health *health.Server
	checks []HealthCheck
}

func NewGrpc(checks ...HealthCheck) *App {
	server := &App{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
		checks: checks,
	}

	healthpb.RegisterHealthServer(server.srv, server.health)
	reflection.Register(server.srv)

	return server
}

func (v *App) Listen() error {
	listener, err := net.Listen("tcp", viper.GetString("grpc_bind"))
	if err != nil {
		return err
	}

	return v.srv.Serve(listener)
}

func (v *App) Stop() {
	v.health.Shutdown()
	v.srv.GracefulStop()
}
