package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/trend-comb/app/api"
	"github.com/lysyi3m/trend-comb/app/cfg"
	"github.com/lysyi3m/trend-comb/app/logging"
	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/lysyi3m/trend-comb/app/source"
	"github.com/lysyi3m/trend-comb/app/tasks"
)

// scheduled runs use the same defaults as GET /feed
const scheduledLimitPerSource = 50

func main() {
	config, err := cfg.Load()
	if err != nil {
		if errors.Is(err, cfg.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.Setup(config.LogFormat, config.Debug)

	slog.Info("Starting trend-comb server", "version", config.Version)

	sources, err := source.Resolve(config.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources", "file", config.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Sources loaded", "count", sources.Len(), "file", config.SourcesFile)

	collector := pipeline.NewPipeline(config.HTTPTimeout, config.UserAgent)

	var scheduler tasks.TaskSchedulerInterface
	if config.Schedule != "" {
		opts := pipeline.Options{
			LimitPerSource:   scheduledLimitPerSource,
			Concurrency:      config.MaxConcurrency,
			RequirePublished: true,
		}
		scheduler, err = tasks.NewScheduler(config.Schedule, func() tasks.TaskInterface {
			return tasks.NewCollectTask(collector, sources, opts, config.SnapshotPath)
		})
		if err != nil {
			slog.Error("Failed to create scheduler", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		slog.Info("Background collection scheduled", "schedule", config.Schedule, "snapshot", config.SnapshotPath)
	}

	handler := api.NewHandler(collector, sources, config.SourcesDir, config.MaxConcurrency, config.Version)
	server := api.NewServer(handler, config.APIAccessKey)

	// Collection runs can take up to the upstream timeout plus parsing
	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: config.HTTPTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", config.Port, "auth", config.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	slog.Info("Server shutdown complete")
}
