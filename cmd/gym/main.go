package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gymadmin/internal/cli"
	apphttp "gymadmin/internal/http"
	"gymadmin/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, log.ComponentApp)
	cfg := cli.MustLoadConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           cfg.Addr(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		ReportCacheTTL: cfg.ReportCacheTTL,
		Logger:         logger,
	}, res.Service)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting gym server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"events", cfg.EventsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		}
	}

	cli.RunCleanup(logger, shutdownTimeout,
		srv.Shutdown,
		func(context.Context) error { return res.Cleanup() },
	)
	logger.Info("Server stopped gracefully")
}
