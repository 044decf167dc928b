package services

import (
	"context"
	"fmt"

	"gymadmin/internal/core"
)

func (s *GymService) ListPayments(ctx context.Context) ([]core.Payment, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *GymService) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// CreatePayment records a payment. Payments cannot be edited afterwards.
func (s *GymService) CreatePayment(ctx context.Context, in core.PaymentInput) (core.Payment, error) {
	p := in.Payment(s.Today(), s.clock())
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}

	member, err := s.requireMember(ctx, p.MemberID)
	if err != nil {
		return core.Payment{}, err
	}
	if p.SubscriptionID != nil {
		if _, err := s.GetSubscription(ctx, *p.SubscriptionID); err != nil {
			return core.Payment{}, err
		}
	}

	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	s.touch()

	desc := fmt.Sprintf("Payment received from %s: %s %s", member.DisplayName(), created.Amount, s.currency(ctx))
	s.record(ctx, core.ActionPaymentReceived, desc, created.ID, core.EntityPayments)
	return created, nil
}

func (s *GymService) currency(ctx context.Context) string {
	st, err := s.store.GetSetting(ctx, core.SettingCurrency)
	if err != nil || st.Value == "" {
		return DefaultCurrency
	}
	return st.Value
}

func (s *GymService) ListAttendance(ctx context.Context) ([]core.AttendanceRecord, error) {
	records, err := s.store.ListAttendance(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

func (s *GymService) GetAttendance(ctx context.Context, id int64) (core.AttendanceRecord, error) {
	a, err := s.store.GetAttendance(ctx, id)
	if err != nil {
		return core.AttendanceRecord{}, fmt.Errorf("get attendance: %w", err)
	}
	return a, nil
}

// CheckIn records a visit; the check-in time defaults to now.
func (s *GymService) CheckIn(ctx context.Context, in core.AttendanceInput) (core.AttendanceRecord, error) {
	rec := in.Record(s.clock())
	if err := rec.Validate(); err != nil {
		return core.AttendanceRecord{}, err
	}

	member, err := s.requireMember(ctx, rec.MemberID)
	if err != nil {
		return core.AttendanceRecord{}, err
	}

	created, err := s.store.CreateAttendance(ctx, rec)
	if err != nil {
		return core.AttendanceRecord{}, fmt.Errorf("create attendance: %w", err)
	}
	s.touch()

	s.record(ctx, core.ActionCheckIn, member.DisplayName()+" checked in", created.ID, core.EntityAttendance)
	return created, nil
}

// UpdateAttendance applies a check-out. Only the first transition from no
// check-out to a check-out is activity-logged; later changes are stored
// silently.
func (s *GymService) UpdateAttendance(ctx context.Context, id int64, patch core.AttendancePatch) (core.AttendanceRecord, error) {
	current, err := s.GetAttendance(ctx, id)
	if err != nil {
		return core.AttendanceRecord{}, err
	}
	if patch.CheckOutTime == nil {
		return current, nil
	}

	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.AttendanceRecord{}, err
	}

	updated, first, err := s.store.SetCheckOut(ctx, id, *next.CheckOutTime)
	if err != nil {
		return core.AttendanceRecord{}, fmt.Errorf("update attendance: %w", err)
	}
	s.touch()

	if first {
		s.record(ctx, core.ActionCheckOut, s.memberName(ctx, updated.MemberID)+" checked out", updated.ID, core.EntityAttendance)
	}
	return updated, nil
}
