package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"ledger-engine/internal/batch"
	"ledger-engine/internal/config"
	"ledger-engine/internal/processor"
	"ledger-engine/internal/repository"
)

func main() {
	// A .env file is optional.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	flag.Parse()
	path := flag.Arg(0)
	if path == "" {
		fmt.Fprintf(os.Stderr, "usage: %s <transactions.csv>\n", os.Args[0])
		os.Exit(2)
	}

	input, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open input file", "path", path, "error", err)
		os.Exit(1)
	}
	defer input.Close()

	store := repository.NewStore(logger)
	runner := batch.NewRunner(processor.New(store, logger), logger)

	if err := runner.Run(input, os.Stdout); err != nil {
		logger.Error("Batch failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
