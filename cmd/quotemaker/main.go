package main

import (
	"context"
	"os/signal"
	"syscall"

	"quotemaker/config"
	"quotemaker/internal/maker/pipeline"
	"quotemaker/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("quote maker starting")

	// run maker
	if err := pipeline.StartMaker(ctx, cfg, log); err != nil {
		log.Fatal("maker failed", zap.Error(err))
	}

	log.Info("quote maker stopped")
}
