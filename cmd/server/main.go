package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/config"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/handlers"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/repository"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/router"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/service"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(logger)

	logger.Info("starting booking service", "port", cfg.Server.Port, "environment", cfg.Server.Environment)

	db, err := config.NewOracleDB(cfg.Oracle)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	// Note: db.Close() is called explicitly during graceful shutdown
	logger.Info("connected to database")

	// Repositories
	contractRepo := repository.NewContractRepository(db)
	rentRequestRepo := repository.NewRentRequestRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	conflictRepo := repository.NewConflictRepository(db)

	// Core collaborators
	detector := booking.NewDetector(conflictRepo)
	clock := booking.SystemClock{}
	notifier := service.NewLogNotifier(logger)

	// Services
	contractSvc := service.NewContractService(contractRepo, clientRepo, vehicleRepo, detector, clock, cfg.Booking.BatchSize, logger)
	rentRequestSvc := service.NewRentRequestService(rentRequestRepo, vehicleRepo, detector, notifier, clock, service.RentRequestPolicy{
		MinLeadTime:   cfg.Booking.MinLeadTime,
		MaxRentalDays: cfg.Booking.MaxRentalDays,
		DedupeWindow:  cfg.Booking.DedupeWindow,
		ExpiryAge:     cfg.Booking.ExpiryAge,
		BatchSize:     cfg.Booking.BatchSize,
	}, logger)
	statsSvc := service.NewStatsService(contractRepo, clock, logger)

	// Handlers
	contractHandler := handlers.NewContractHandler(contractSvc, cfg.Booking.EndingSoonDays)
	rentRequestHandler := handlers.NewRentRequestHandler(rentRequestSvc, contractSvc)
	statsHandler := handlers.NewStatsHandler(statsSvc)
	healthHandler := handlers.NewHealthHandler(db)

	r := router.NewRouter(
		cfg.JWT.Secret,
		logger,
		contractHandler,
		rentRequestHandler,
		statsHandler,
		healthHandler,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runEvery(ctx, cfg.Booking.AdvanceInterval, func() {
		if _, _, err := contractSvc.ProcessDueTransitions(ctx); err != nil {
			logger.Error("failed to process due contract transitions", "error", err)
		}
	})
	go runEvery(ctx, cfg.Booking.ExpiryInterval, func() {
		if _, err := rentRequestSvc.ExpirePending(ctx); err != nil {
			logger.Error("failed to expire pending rent requests", "error", err)
		}
	})

	// Error channel for server listen errors
	serverErrCh := make(chan error, 1)

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			serverErrCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		logger.Info("received shutdown signal")
	case err := <-serverErrCh:
		logger.Error("server listen failed", "error", err)
		exitCode = 1
	}

	logger.Info("shutting down server...")

	// Cancel background jobs
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		exitCode = 1
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// runEvery runs fn immediately and then on every tick until ctx is done
func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	fn()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func logLevel(cfg *config.Config) slog.Level {
	if cfg.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
