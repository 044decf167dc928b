// Package worker runs background jobs against the gym service.
package worker

import (
	"context"
	"errors"
	"time"

	"gymadmin/internal/log"
)

// Expirer is the part of the service the expiry worker drives.
type Expirer interface {
	ExpireLapsed(ctx context.Context) (int, error)
}

// ExpiryWorker periodically marks lapsed subscriptions as expired.
type ExpiryWorker struct {
	expirer  Expirer
	interval time.Duration
	logger   *log.Logger
}

func NewExpiryWorker(expirer Expirer, interval time.Duration, logger *log.Logger) *ExpiryWorker {
	if logger == nil {
		logger = log.Nop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpiryWorker{
		expirer:  expirer,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// RunOnce performs a single sweep.
func (w *ExpiryWorker) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := w.expirer.ExpireLapsed(ctx)
	if err != nil {
		return n, err
	}
	w.logger.InfoContext(ctx, "Expiry sweep complete",
		log.FieldOperation, log.OpExpire,
		log.FieldCount, n,
		log.FieldDuration, time.Since(start).Milliseconds())
	return n, nil
}

// Run sweeps once immediately and then every interval until ctx is done.
// Failed sweeps are logged and retried on the next tick.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Expiry worker started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "Expiry sweep failed",
				log.FieldOperation, log.OpExpire,
				log.FieldError, err,
				"next_check", time.Now().Add(w.interval).Format("15:04:05"))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Expiry worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}
