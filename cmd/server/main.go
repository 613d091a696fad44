package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := store.OpenDir(cfg.CacheDir, log)
	if err != nil {
		log.Error("failed to open outline cache", "dir", cfg.CacheDir, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	proc := pipeline.NewProcessor(cfg.ParserOptions(), cache, stats.NewTracker(cfg.StatsWindow), log)
	orch := pipeline.NewOrchestrator(pipeline.Options{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
	}, proc, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, cache, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if err := cache.Close(); err != nil {
			log.Error("close outline cache", "error", err)
		}
	}()

	log.Info("starting docoutline", "port", cfg.Port, "workers", cfg.WorkerCount, "cache_dir", cfg.CacheDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
