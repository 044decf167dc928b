// Package reports derives the dashboard and reports bundles from full scans
// of the record store. The computations are pure: "now" and its location are
// passed in, never read from the wall clock.
package reports

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gymadmin/internal/core"
)

// Source is the read side of the store the engine needs.
type Source interface {
	ListMembers(ctx context.Context) ([]core.Member, error)
	ListPlans(ctx context.Context) ([]core.MembershipPlan, error)
	ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
	ListPayments(ctx context.Context) ([]core.Payment, error)
	ListAttendance(ctx context.Context) ([]core.AttendanceRecord, error)
}

// Snapshot is one consistent-enough read of every table the reports use.
type Snapshot struct {
	Members       []core.Member
	Plans         []core.MembershipPlan
	Subscriptions []core.Subscription
	Payments      []core.Payment
	Attendance    []core.AttendanceRecord
}

// Load scans the five tables concurrently. The first failure cancels the
// remaining scans.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := src.ListMembers(ctx)
		if err != nil {
			return fmt.Errorf("load members: %w", err)
		}
		snap.Members = v
		return nil
	})
	g.Go(func() error {
		v, err := src.ListPlans(ctx)
		if err != nil {
			return fmt.Errorf("load plans: %w", err)
		}
		snap.Plans = v
		return nil
	})
	g.Go(func() error {
		v, err := src.ListSubscriptions(ctx)
		if err != nil {
			return fmt.Errorf("load subscriptions: %w", err)
		}
		snap.Subscriptions = v
		return nil
	})
	g.Go(func() error {
		v, err := src.ListPayments(ctx)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}
		snap.Payments = v
		return nil
	})
	g.Go(func() error {
		v, err := src.ListAttendance(ctx)
		if err != nil {
			return fmt.Errorf("load attendance: %w", err)
		}
		snap.Attendance = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s Snapshot) memberByID() map[int64]*core.Member {
	out := make(map[int64]*core.Member, len(s.Members))
	for i := range s.Members {
		out[s.Members[i].ID] = &s.Members[i]
	}
	return out
}

func (s Snapshot) planByID() map[int64]*core.MembershipPlan {
	out := make(map[int64]*core.MembershipPlan, len(s.Plans))
	for i := range s.Plans {
		out[s.Plans[i].ID] = &s.Plans[i]
	}
	return out
}
