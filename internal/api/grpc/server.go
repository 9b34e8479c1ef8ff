package grpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"journal-backend/internal/api/grpc/interceptor"
	"journal-backend/internal/security"
	"journal-backend/internal/service"
)

// NewServer builds the admin gRPC server with auth, tracing, health and reflection.
func NewServer(tokens security.TokenManager, navSvc service.NavigationService, invSvc service.InvitationService) *grpc.Server {
	authInterceptor := interceptor.NewAuthInterceptor(tokens)
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(authInterceptor.Unary()),
	)

	RegisterNavigationMenuAdminServer(s, NewNavigationMenuAdminHandler(navSvc, invSvc))
	healthpb.RegisterHealthServer(s, health.NewServer())

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}
