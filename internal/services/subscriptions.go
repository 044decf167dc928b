package services

import (
	"context"
	"fmt"

	"gymadmin/internal/core"
)

func (s *GymService) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *GymService) GetSubscription(ctx context.Context, id int64) (core.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// CreateSubscription resolves the member and plan before validating, so a
// missing reference is reported as not found. When endDate is omitted it is
// derived from the plan duration.
func (s *GymService) CreateSubscription(ctx context.Context, in core.SubscriptionInput) (core.Subscription, error) {
	var (
		member core.Member
		plan   *core.MembershipPlan
	)
	if in.MemberID > 0 {
		m, err := s.requireMember(ctx, in.MemberID)
		if err != nil {
			return core.Subscription{}, err
		}
		member = m
	}
	if in.PlanID > 0 {
		p, err := s.GetPlan(ctx, in.PlanID)
		if err != nil {
			return core.Subscription{}, err
		}
		plan = &p
	}

	sub := in.Subscription(plan, s.clock())
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	created, err := s.store.CreateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	s.touch()

	desc := fmt.Sprintf("New subscription added for %s: %s", member.DisplayName(), plan.DisplayName())
	s.record(ctx, core.ActionSubscriptionAdded, desc, created.ID, core.EntitySubscriptions)
	return created, nil
}

func (s *GymService) UpdateSubscription(ctx context.Context, id int64, patch core.SubscriptionPatch) (core.Subscription, error) {
	current, err := s.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}

	next := patch.Apply(current)
	if next.MemberID != current.MemberID && next.MemberID > 0 {
		if _, err := s.requireMember(ctx, next.MemberID); err != nil {
			return core.Subscription{}, err
		}
	}
	if next.PlanID != current.PlanID && next.PlanID > 0 {
		if _, err := s.GetPlan(ctx, next.PlanID); err != nil {
			return core.Subscription{}, err
		}
	}
	if err := next.Validate(); err != nil {
		return core.Subscription{}, err
	}

	return s.saveSubscription(ctx, next)
}

func (s *GymService) saveSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	updated, err := s.store.UpdateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	s.touch()

	desc := fmt.Sprintf("Subscription updated for %s: %s",
		s.memberName(ctx, updated.MemberID), s.planName(ctx, updated.PlanID))
	s.record(ctx, core.ActionSubscriptionUpdated, desc, updated.ID, core.EntitySubscriptions)
	return updated, nil
}
