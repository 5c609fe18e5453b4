package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"clinicsched/internal/audit"
	"clinicsched/internal/config"
	"clinicsched/internal/service/scheduling"
	"clinicsched/internal/store"
	"clinicsched/internal/store/memstore"
	"clinicsched/internal/store/postgres"
	grpcTransport "clinicsched/internal/transport/grpc"
	"clinicsched/internal/transport/httpapi"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC API and the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServer(ctx context.Context, autoMigrate bool) error {
	cfg, log, err := loadConfig()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		return err
	}
	log.Info(
		"starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("storage", cfg.StorageDriver),
		slog.String("audit", cfg.AuditSink),
		slog.String("log_level", cfg.LogLevel),
	)

	repo, closeRepo, err := openRepository(ctx, cfg, log, autoMigrate)
	if err != nil {
		return err
	}
	defer closeRepo()

	sink, closeSink, err := openAuditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	svc := scheduling.NewService(repo, scheduling.Options{
		SkipDailyCaps: !cfg.EnforceDailyCaps,
		SlotInterval:  cfg.SlotInterval,
		Audit:         sink,
		AuditTimeout:  cfg.AuditTimeout,
		Logger:        log,
	})

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcTransport.RequestTimeout(cfg.GRPCRequestTimeout)),
	)
	healthServer := grpcTransport.Register(grpcServer, grpcTransport.NewSchedulingServer(svc, log))
	gateway := httpapi.NewServer(httpapi.NewHandler(svc, log), log, cfg.GRPCRequestTimeout)

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- fmt.Errorf("grpc: %w", grpcServer.Serve(lis))
	}()
	go func() {
		errCh <- fmt.Errorf("http: %w", gateway.Start(cfg.HTTPAddr))
	}()
	log.Info("servers started", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, grpcServer, healthServer, gateway, cfg.ShutdownTimeout)
		drainAudit(log, svc, cfg.AuditTimeout)
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Error("server stopped with error", slog.Any("err", err))
		shutdown(log, grpcServer, healthServer, gateway, cfg.ShutdownTimeout)
		drainAudit(log, svc, cfg.AuditTimeout)
		return err
	}
}

func openRepository(ctx context.Context, cfg config.Config, log *slog.Logger, autoMigrate bool) (store.Repository, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if autoMigrate {
		group, err := postgres.MigrateUp(ctx, db)
		if err != nil {
			closeDatabase(log, db)
			log.Error("migration failed", slog.Any("err", err))
			return nil, nil, err
		}
		if !group.IsZero() {
			log.Info("migrations applied", slog.Int64("group_id", group.ID), slog.String("migrations", group.Migrations.String()))
		}
	}
	return postgres.NewRepo(db), func() { closeDatabase(log, db) }, nil
}

func openAuditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, func(), error) {
	switch cfg.AuditSink {
	case config.AuditNone:
		return audit.Discard, func() {}, nil
	case config.AuditRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			log.Error("redis connection failed", slog.Any("err", err), slog.String("redis_addr", cfg.RedisAddr))
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("audit events go to redis stream", slog.String("stream", cfg.AuditStream))
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}
		return audit.NewRedisStreamSink(client, cfg.AuditStream, cfg.AuditMaxLen), closeFn, nil
	}
	return audit.NewLogSink(log), func() {}, nil
}

func shutdown(log *slog.Logger, s *grpc.Server, hs *health.Server, e *echo.Echo, timeout time.Duration) {
	log.Info("shutting down", slog.Duration("timeout", timeout))
	hs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

// drainAudit lets pending audit records reach the sink before it is closed.
func drainAudit(log *slog.Logger, svc *scheduling.Service, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := svc.DrainAudit(ctx); err != nil {
		log.Warn("audit drain timed out", slog.Any("err", err))
	}
}
