package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cifra/api/internal/api/handlers"
	"cifra/api/internal/api/middleware"
	"cifra/api/internal/api/router"
	"cifra/api/internal/config"
	"cifra/api/internal/core/services"
	grpcdelivery "cifra/api/internal/delivery/grpc"
	httpdelivery "cifra/api/internal/delivery/http"
	"cifra/api/internal/infrastructure/crypto"
	"cifra/api/internal/telemetry"
	"cifra/api/internal/workers"
)

func main() {
	// --- 1. Core Telemetry & Configuration ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("Booting cifra API...")
	cfg := config.Load()

	// --- 2. Engine & Services ---
	telemetryHub := telemetry.NewHub()

	cipherService := services.NewCipherService(
		crypto.NewRegistry(cfg.DefaultShift),
		services.CipherLimits{MaxInputLength: cfg.MaxInputLength, MaxColumns: cfg.MaxColumns},
		telemetryHub,
		logger,
	)
	if err := cipherService.SelfTest(context.Background()); err != nil {
		logger.Error("FATAL: cipher self-test failed", "error", err)
		os.Exit(1)
	}

	// Bearer tokens are only enforced when a secret is configured.
	var tokens middleware.TokenValidator
	if cfg.JWTSecret != "" {
		tokens = services.NewTokenService(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set; /api/v1 is unauthenticated")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens, logger, cfg.RateLimitRPS, cfg.RateLimitBurst)

	batchRunner := workers.NewBatchRunner(cipherService, logger, cfg.BatchConcurrency, cfg.RequestTimeout)

	// --- 3. Background Workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go authMiddleware.CleanupVisitors(workerCtx, time.Minute, 3*time.Minute)

	var healthServer *grpcdelivery.HealthServer
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Error("FATAL: gRPC listener failed", "error", err)
			os.Exit(1)
		}
		healthServer = grpcdelivery.NewHealthServer(cipherService, logger)
		go healthServer.Watch(workerCtx, 30*time.Second)
		go func() {
			logger.Info("gRPC health service active", "port", cfg.GRPCPort)
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("CRITICAL: gRPC server crashed", "error", err)
			}
		}()
	}

	// --- 4. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		CipherHandler:  handlers.NewCipherHandler(cipherService, batchRunner, cfg.MaxBatchSize),
		EventsHandler:  handlers.NewEventsHandler(telemetryHub, logger),
		WSHandler:      handlers.NewWebSocketHandler(cipherService, logger, cfg.AllowedOrigins),
		HealthHandler:  httpdelivery.NewHealthHandler(cipherService),
		AuthMiddleware: authMiddleware,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	// No WriteTimeout: /events and /ws are long-lived. Bounded routes use chi's Timeout.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// --- 5. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("cifra API active", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: Server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("Shutting down...")
	cancelWorkers()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	if healthServer != nil {
		healthServer.Stop()
	}
	logger.Info("cifra API stopped")
}
