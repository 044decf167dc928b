package services

import (
	"context"
	"fmt"

	"gymadmin/internal/core"
	"gymadmin/internal/log"
	"gymadmin/internal/observability"
)

// ExpireLapsed marks every active subscription whose end date is before
// today as expired. A subscription is still valid on its end date. Each
// change goes through the regular update path, so it is activity-logged.
// Failures on single records are logged and skipped.
func (s *GymService) ExpireLapsed(ctx context.Context) (int, error) {
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	today := s.Today()
	s.logger.InfoContext(ctx, "Processing lapsed subscriptions",
		log.FieldOperation, log.OpExpire,
		"total", len(subs),
		"today", today.String())

	expired := 0
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		if !sub.IsActive() || !sub.EndDate.Before(today) {
			continue
		}

		sub.Status = core.StatusExpired
		if _, err := s.saveSubscription(ctx, sub); err != nil {
			s.logger.ErrorContext(ctx, "Failed to expire subscription",
				log.FieldEntityID, sub.ID,
				log.FieldError, err)
			continue
		}
		expired++
	}

	observability.RecordExpirySweep(expired, s.clock())
	s.logger.InfoContext(ctx, "Lapsed subscription processing complete",
		log.FieldOperation, log.OpExpire,
		log.FieldCount, expired)

	return expired, nil
}
