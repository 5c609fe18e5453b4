package grpc

import (
	"context"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	schedv1 "clinicsched/internal/api/schedulingv1"
)

const DefaultRequestTimeout = 10 * time.Second

// Register mounts the scheduling service and the standard health service on
// s. The returned health server reports SERVING until the caller flips it
// during shutdown.
func Register(s *grpclib.Server, srv *SchedulingServer) *health.Server {
	schedv1.RegisterSchedulingServiceServer(s, srv)

	hs := health.NewServer()
	hs.SetServingStatus(schedv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

// RequestTimeout bounds every unary call that arrives without a deadline.
func RequestTimeout(timeout time.Duration) grpclib.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(ctx context.Context, req any, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}
