package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcoach/internal/config"
	"fitcoach/internal/db"
	"fitcoach/internal/email"
	"fitcoach/internal/logger"
	"fitcoach/internal/server"
	"fitcoach/internal/storage"
)

// @title FitCoach API
// @version 1.0
// @description Coaching platform: exercise catalog, programs, client customization, scheduling, sessions, events and community.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting FitCoach application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		logger.Fatalf("Failed to initialize object storage: %v", err)
	}

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	go emailService.Start(ctx)

	srv := server.New(ctx, database, cfg, emailService, files)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		logger.Error("Server error", "error", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
