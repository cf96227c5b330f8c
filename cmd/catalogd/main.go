// Package main provides the catalogd product catalog server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfaulhaber/catalogd/internal/config"
	"github.com/mfaulhaber/catalogd/internal/ingest"
	"github.com/mfaulhaber/catalogd/internal/metrics"
	"github.com/mfaulhaber/catalogd/internal/progress"
	"github.com/mfaulhaber/catalogd/internal/server"
	"github.com/mfaulhaber/catalogd/internal/store"
	"github.com/mfaulhaber/catalogd/internal/task"
	"github.com/mfaulhaber/catalogd/internal/webhook"
)

func main() {
	// Parse flags
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	// Initialize logging
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	slog.SetDefault(logger)

	logger.Info("starting catalogd", "addr", cfg.Addr)

	// Connect to the database and apply the schema
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := store.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		cancel()
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := store.InitSchema(ctx, db); err != nil {
		cancel()
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	cancel()
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	products := store.NewProductStore(db)
	webhooks := store.NewWebhookStore(db)

	// Wire the ingestion pipeline and webhook dispatcher
	broadcaster := progress.NewBroadcaster(logger)
	jobs := task.New(logger, cfg.MaxConcurrentJobs)
	deliveries := task.New(logger, 0)
	stats := metrics.NewCollector()
	dispatcher := webhook.NewDispatcher(webhooks, deliveries, logger, cfg.WebhookTimeout)
	dispatcher.Instrument(stats)
	pipeline := ingest.NewPipeline(products, broadcaster, logger, cfg.BatchSize)

	srv := server.New(server.Deps{
		Products:    products,
		Webhooks:    webhooks,
		Broadcaster: broadcaster,
		Dispatcher:  dispatcher,
		Pipeline:    pipeline,
		Jobs:        jobs,
		Metrics:     stats,
		UploadDir:   cfg.UploadDir,
		Logger:      logger,
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  5 * time.Minute, // Long for large uploads
		WriteTimeout: 0,               // Websocket streams stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("API available", "url", fmt.Sprintf("http://localhost%s/api/health", cfg.Addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight ingestion jobs and deliveries finish
	jobs.Wait()
	deliveries.Wait()

	logger.Info("server stopped")
}
