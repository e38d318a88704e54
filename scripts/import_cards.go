package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arenapilot/arenapilot/internal/config"
	"github.com/arenapilot/arenapilot/internal/scenario"
	"go.uber.org/zap"
)

// Converts a card database CSV export into a scenario card library.
//
//	go run ./scripts/import_cards.go -out scenarios/library/core.yaml data/cards_export.csv
func main() {
	out := flag.String("out", "", "library file to write (stdout when empty)")
	flag.Parse()

	logger, err := config.NewLogger(config.LoggingConfig{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Get CSV file path from args or use default
	csvPath := "data/cards_export.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		logger.Fatal("failed to get absolute path", zap.Error(err))
	}

	start := time.Now()
	in, err := os.Open(absPath)
	if err != nil {
		logger.Fatal("failed to open card export", zap.String("path", absPath), zap.Error(err))
	}
	defer in.Close()

	lib, skipped, err := scenario.ImportCSV(in)
	if err != nil {
		logger.Fatal("failed to import cards", zap.Error(err))
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Fatal("failed to create library file", zap.String("path", *out), zap.Error(err))
		}
		defer f.Close()
		w = f
	}
	if err := scenario.WriteLibrary(w, lib); err != nil {
		logger.Fatal("failed to write library", zap.Error(err))
	}

	logger.Info("card library written",
		zap.String("source", absPath),
		zap.Int("cards", len(lib.Cards)),
		zap.Int("skipped", skipped),
		zap.Duration("took", time.Since(start)),
	)
}
