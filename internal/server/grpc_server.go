package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	_ "github.com/oggyb/wandermatch/internal/codec" // json content-subtype
	"github.com/oggyb/wandermatch/internal/config"
	"github.com/oggyb/wandermatch/internal/logger"
	"github.com/oggyb/wandermatch/internal/metrics"
)

// NewGRPCServer builds a gRPC server with logging/metrics interceptors,
// the health service and reflection, and registers all provided services.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryInterceptor(log)),
		grpc.ChainStreamInterceptor(streamInterceptor(log)),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// enable reflection for easier debugging with grpcurl. Services with a
	// hand-written descriptor (SocialService) are listed but have no file
	// descriptor, so grpcurl can list them but not describe or call them
	// by reflection.
	reflection.Register(grpcServer)

	return grpcServer, healthServer
}

// StartGRPCServer boots a gRPC server and serves until ctx is cancelled,
// then stops gracefully.
func StartGRPCServer(ctx context.Context, cfg *config.Config, log *slog.Logger, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer, healthServer := NewGRPCServer(log, registrars...)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}()

	log.Info("starting gRPC server", "addr", addr)
	return grpcServer.Serve(lis)
}

func unaryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx = logger.IntoContext(ctx, log.With("rpc", info.FullMethod, "request_id", uuid.NewString()))
		resp, err := handler(ctx, req)
		observe(log, info.FullMethod, start, err)
		return resp, err
	}
}

func streamInterceptor(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		ctx := logger.IntoContext(ss.Context(), log.With("rpc", info.FullMethod, "request_id", uuid.NewString()))
		err := handler(srv, &loggedStream{ServerStream: ss, ctx: ctx})
		observe(log, info.FullMethod, start, err)
		return err
	}
}

// loggedStream swaps in a context carrying the request logger.
type loggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *loggedStream) Context() context.Context { return s.ctx }

func observe(log *slog.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	elapsed := time.Since(start)
	metrics.RPCDuration.WithLabelValues(method, code.String()).Observe(elapsed.Seconds())

	if err != nil {
		log.Warn("rpc failed", "method", method, "code", code.String(), "duration", elapsed, "err", err)
		return
	}
	log.Debug("rpc", "method", method, "duration", elapsed)
}
