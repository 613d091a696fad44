// Command outline writes a JSON outline for every document in a directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docoutline/internal/batch"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("outline", flag.ContinueOnError)
	input := fs.String("input", "./input", "directory holding the source documents")
	output := fs.String("output", "./output", "directory that receives <name>.json outlines")
	configFile := fs.String("config", "", "optional YAML config file")
	cacheDir := fs.String("cache", "", "outline cache directory (overrides config; empty keeps it in memory)")
	workers := fs.Int("workers", 0, "documents processed at once (overrides config)")
	allFormats := fs.Bool("all-formats", false, "also outline Markdown, HTML and DOCX files")
	printJSON := fs.Bool("print", false, "print each outline to stdout after saving it")
	logLevel := fs.String("loglevel", "info", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -loglevel %q\n", *logLevel)
		return 2
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *workers > 0 {
		cfg.WorkerCount = *workers
	}

	cache, err := store.OpenDir(cfg.CacheDir, log)
	if err != nil {
		log.Error("failed to open outline cache", "dir", cfg.CacheDir, "error", err)
		return 1
	}
	defer cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := pipeline.NewProcessor(cfg.ParserOptions(), cache, nil, log)
	sum, err := batch.NewRunner(proc, log).Run(ctx, batch.Options{
		InputDir:   *input,
		OutputDir:  *output,
		Workers:    cfg.WorkerCount,
		AllFormats: *allFormats,
	})
	if err != nil {
		log.Error("batch failed", "error", err)
		return 1
	}

	if *printJSON {
		for _, fr := range sum.Results {
			if fr.Error != "" {
				continue
			}
			if err := batch.EncodeResult(os.Stdout, fr.Result()); err != nil {
				log.Error("print outline", "filename", fr.Filename, "error", err)
			}
		}
	}
	return 0
}
