package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "smartparking-backend/internal/api/http"
	"smartparking-backend/internal/app"
	"smartparking-backend/internal/config"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/security"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of a password for the auth.operators section and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := security.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Smart Parking backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "store", cfg.Store.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store and external collaborators
	infra, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize infrastructure", "error", err)
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	defer func() {
		if err := infra.Close(); err != nil {
			logger.Error("Failed to close infrastructure", "error", err)
		}
	}()
	services := infra.Services(cfg)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authenticator := security.NewOperatorAuthenticator(cfg.Auth.Operators)
	if len(cfg.Auth.Operators) == 0 {
		logger.Warn("No operators configured, token issuance will reject every login")
	}

	handler := httpapi.NewHandler(
		services.Spaces,
		services.Users,
		services.Reservations,
		services.Billing,
		tokenManager,
		authenticator,
		infra.Health,
	)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
