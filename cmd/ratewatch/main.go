package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/frankfurter/internal/app"
	"github.com/samvad-hq/frankfurter/internal/config"
	"github.com/samvad-hq/frankfurter/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ratewatch start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	log := logger.New(sugar)

	logger.InfoObj("ratewatch starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rw, err := app.NewRateWatch(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize rate watcher", "error", err)
		return err
	}

	if err := rw.Run(ctx); err != nil {
		return fmt.Errorf("ratewatch run: %w", err)
	}
	return nil
}
