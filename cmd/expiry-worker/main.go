package main

import (
	"context"
	"os"
	"time"

	"gymadmin/internal/cli"
	"gymadmin/internal/log"
	"gymadmin/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, log.ComponentWorker)
	cfg := cli.MustLoadConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentWorker)

	if cfg.DataBackend == "memory" {
		logger.Warn("Expiry worker on the memory backend only sees its own empty store")
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer cli.RunCleanup(logger, 10*time.Second, func(context.Context) error { return res.Cleanup() })

	w := worker.NewExpiryWorker(res.Service, cfg.ExpiryInterval, logger)
	if err := w.Run(ctx); err != nil {
		logger.Error("Expiry worker failed", log.FieldError, err)
	}
}
