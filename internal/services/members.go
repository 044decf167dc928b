package services

import (
	"context"
	"fmt"

	"gymadmin/internal/core"
)

func (s *GymService) ListMembers(ctx context.Context) ([]core.Member, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *GymService) GetMember(ctx context.Context, id int64) (core.Member, error) {
	return s.requireMember(ctx, id)
}

func (s *GymService) CreateMember(ctx context.Context, in core.MemberInput) (core.Member, error) {
	m := in.Member(s.clock())
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}

	created, err := s.store.CreateMember(ctx, m)
	if err != nil {
		return core.Member{}, fmt.Errorf("create member: %w", err)
	}
	s.touch()

	s.record(ctx, core.ActionMemberAdded, "New member added: "+created.DisplayName(), created.ID, core.EntityMembers)
	return created, nil
}

func (s *GymService) UpdateMember(ctx context.Context, id int64, patch core.MemberPatch) (core.Member, error) {
	current, err := s.requireMember(ctx, id)
	if err != nil {
		return core.Member{}, err
	}

	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.Member{}, err
	}

	updated, err := s.store.UpdateMember(ctx, next)
	if err != nil {
		return core.Member{}, fmt.Errorf("update member: %w", err)
	}
	s.touch()

	s.record(ctx, core.ActionMemberUpdated, "Member updated: "+updated.DisplayName(), updated.ID, core.EntityMembers)
	return updated, nil
}

// MemberSubscriptions lists one member's subscriptions.
func (s *GymService) MemberSubscriptions(ctx context.Context, memberID int64) ([]core.Subscription, error) {
	if _, err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	all, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return filter(all, func(v core.Subscription) bool { return v.MemberID == memberID }), nil
}

// MemberPayments lists one member's payments.
func (s *GymService) MemberPayments(ctx context.Context, memberID int64) ([]core.Payment, error) {
	if _, err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	all, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return filter(all, func(v core.Payment) bool { return v.MemberID == memberID }), nil
}

// MemberAttendance lists one member's visits.
func (s *GymService) MemberAttendance(ctx context.Context, memberID int64) ([]core.AttendanceRecord, error) {
	if _, err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	all, err := s.store.ListAttendance(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return filter(all, func(v core.AttendanceRecord) bool { return v.MemberID == memberID }), nil
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *GymService) ListPlans(ctx context.Context) ([]core.MembershipPlan, error) {
	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (s *GymService) GetPlan(ctx context.Context, id int64) (core.MembershipPlan, error) {
	p, err := s.store.GetPlan(ctx, id)
	if err != nil {
		return core.MembershipPlan{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *GymService) CreatePlan(ctx context.Context, in core.PlanInput) (core.MembershipPlan, error) {
	p := in.Plan(s.clock())
	if err := p.Validate(); err != nil {
		return core.MembershipPlan{}, err
	}

	created, err := s.store.CreatePlan(ctx, p)
	if err != nil {
		return core.MembershipPlan{}, fmt.Errorf("create plan: %w", err)
	}
	s.touch()

	s.record(ctx, core.ActionPlanAdded, "New membership plan added: "+created.DisplayName(), created.ID, core.EntityPlans)
	return created, nil
}

func (s *GymService) UpdatePlan(ctx context.Context, id int64, patch core.PlanPatch) (core.MembershipPlan, error) {
	current, err := s.GetPlan(ctx, id)
	if err != nil {
		return core.MembershipPlan{}, err
	}

	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.MembershipPlan{}, err
	}

	updated, err := s.store.UpdatePlan(ctx, next)
	if err != nil {
		return core.MembershipPlan{}, fmt.Errorf("update plan: %w", err)
	}
	s.touch()

	s.record(ctx, core.ActionPlanUpdated, "Membership plan updated: "+updated.DisplayName(), updated.ID, core.EntityPlans)
	return updated, nil
}
