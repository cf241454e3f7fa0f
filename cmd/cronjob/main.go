package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"smartparking-backend/internal/app"
	"smartparking-backend/internal/config"
	"smartparking-backend/internal/jobs"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a job once and exit ("+strings.Join(jobs.JobNames(), ", ")+", all)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Smart Parking cronjob runner...", "log_level", cfg.Log.Level)

	if cfg.Store.Type == config.StoreTypeMemory {
		logger.Warn("Cronjob runner is using the in-memory store and sees no data from the server process")
	}

	infra, err := app.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize infrastructure", "error", err)
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	defer infra.Close()
	services := infra.Services(cfg)

	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Users:        services.Users,
		Reservations: services.Reservations,
		Billing:      services.Billing,
		Notifier:     infra.Notifier,
	}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !jobRunner.RunJob(*runOnce) {
			logger.Error("Unknown job name", "job", *runOnce)
			fmt.Println("Available jobs:")
			for _, name := range jobs.JobNames() {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println("  - all")
			infra.Close()
			os.Exit(1)
		}
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		infra.Close()
		os.Exit(1)
	}
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
}
