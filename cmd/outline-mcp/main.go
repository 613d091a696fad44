// Command outline-mcp serves the outline tools over MCP stdio.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/mcp"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	cacheDir := flag.String("cache", "", "outline cache directory (overrides config)")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}

	cache, err := store.OpenDir(cfg.CacheDir, log)
	if err != nil {
		log.Error("failed to open outline cache", "dir", cfg.CacheDir, "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	proc := pipeline.NewProcessor(cfg.ParserOptions(), cache, stats.NewTracker(cfg.StatsWindow), log)
	if err := mcp.NewServer(proc, cfg.WorkerCount, log).ServeStdio(); err != nil {
		log.Error("mcp server error", "error", err)
		cache.Close()
		os.Exit(1)
	}
}
