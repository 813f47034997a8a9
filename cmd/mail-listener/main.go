package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pepco/internal/config"
	"pepco/internal/listener"
	"pepco/internal/logging"
	"pepco/internal/pipeline"
	"pepco/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, nil)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	engine := pipeline.NewEngine(pipeline.WithBatchOffset(cfg.BatchOffsetDays), pipeline.WithLogger(logger))
	svc := listener.NewService(db, cfg, engine, logger)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("listener.start", "provider", cfg.MailListenerProvider, "interval_sec", cfg.MailListenerIntervalSec)
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
