package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arenapilot/arenapilot/internal/config"
	"github.com/arenapilot/arenapilot/internal/game"
	"github.com/arenapilot/arenapilot/internal/scenario"
	"go.uber.org/zap"
)

var (
	configPath  = flag.String("config", "config/config.yaml", "path to configuration file")
	journalPath = flag.String("journal", "", "write the game journal to this file")
	version     = "dev" // set via ldflags during build
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] scenario.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting scenario runner",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Int("scenarios", flag.NArg()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, path := range flag.Args() {
		if err := run(ctx, path, cfg, logger); err != nil {
			logger.Error("scenario failed", zap.String("path", path), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		logger.Error("some scenarios failed", zap.Int("failed", failed))
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, cfg *config.Config, logger *zap.Logger) error {
	f, err := scenario.Load(path)
	if err != nil {
		return err
	}

	engine := game.NewEngine(cfg.Engine, logger)
	r := scenario.NewRunner(f, engine, logger)
	runErr := r.Run(ctx)

	out, err := json.MarshalIndent(r.Summary(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if *journalPath != "" && engine.Journal() != nil {
		if err := writeJournal(*journalPath, engine.Journal()); err != nil {
			return err
		}
		logger.Info("journal written", zap.String("path", *journalPath), zap.Int("snapshots", engine.Journal().Len()))
	}
	return runErr
}

func writeJournal(path string, j *game.Journal) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	if _, err := j.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
