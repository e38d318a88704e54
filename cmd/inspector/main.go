package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arenapilot/arenapilot/internal/config"
	"github.com/arenapilot/arenapilot/internal/game"
	"github.com/arenapilot/arenapilot/internal/inspector"
	"github.com/arenapilot/arenapilot/internal/scenario"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "config/config.yaml", "path to configuration file")
	scenarioPath = flag.String("scenario", "scenarios/pipeline.yaml", "scenario to play")
	version      = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

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

	logger.Info("starting inspector",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("scenario", *scenarioPath),
	)

	f, err := scenario.Load(*scenarioPath)
	if err != nil {
		logger.Fatal("failed to load scenario", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := inspector.NewHub(logger)
	go hub.Run(ctx)

	go func() {
		engine := game.NewEngine(cfg.Engine, logger)
		r := scenario.NewRunner(f, engine, logger)
		if err := inspector.Play(ctx, hub, r, cfg.Inspector.StepDelay, logger); err != nil {
			logger.Warn("scenario stopped", zap.Error(err))
		}
	}()

	if err := inspector.Serve(ctx, cfg.Inspector.Address, hub, logger); err != nil {
		logger.Fatal("inspector server error", zap.Error(err))
	}
}
