package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kedorion/careers-api/internal/applog"
	"github.com/kedorion/careers-api/internal/config"
	"github.com/kedorion/careers-api/internal/http/handler"
	"github.com/kedorion/careers-api/internal/http/middleware"
	"github.com/kedorion/careers-api/internal/http/router"
	"github.com/kedorion/careers-api/internal/logger"
	"github.com/kedorion/careers-api/internal/recaptcha"
	"github.com/kedorion/careers-api/internal/service"
	"github.com/kedorion/careers-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Initialize resume storage
	resumeStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized",
		zap.String("mode", cfg.Storage.Mode),
		zap.Int64("max_upload_mb", cfg.Storage.MaxUploadMB),
	)

	// Initialize the application log store
	appLog, err := applog.NewStore(&cfg.Log, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application log: %w", err)
	}

	// Verification client (disabled when no secret is configured)
	verifier := recaptcha.NewClient(&cfg.Recaptcha, log)
	if cfg.Recaptcha.Secret == "" {
		log.Info("reCAPTCHA verification disabled, no secret configured")
	} else {
		log.Info("reCAPTCHA verification enabled",
			zap.Float64("min_score", cfg.Recaptcha.MinScore),
		)
	}

	// Initialize service and handler
	applicationService := service.NewApplicationService(resumeStorage, appLog, verifier, cfg.Storage.MaxUploadMB, log)
	applicationHandler := handler.NewApplicationHandler(applicationService, cfg.Storage.MaxUploadMB, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Setup router
	rt := router.NewRouter(cfg, log, rateLimiter, applicationHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
