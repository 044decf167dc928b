package core

import "time"

// Subscription statuses.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Subscription links a member to a plan for a date range.
type Subscription struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"memberId"`
	PlanID    int64     `json:"planId"`
	StartDate Date      `json:"startDate"`
	EndDate   Date      `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubscriptionInput struct {
	MemberID  int64  `json:"memberId"`
	PlanID    int64  `json:"planId"`
	StartDate Date   `json:"startDate"`
	EndDate   *Date  `json:"endDate"`
	Status    string `json:"status"`
}

// Subscription builds the record to insert. A missing end date is derived
// from the plan duration; plan may be nil when the caller could not load it.
func (in SubscriptionInput) Subscription(plan *MembershipPlan, now time.Time) Subscription {
	s := Subscription{
		MemberID:  in.MemberID,
		PlanID:    in.PlanID,
		StartDate: in.StartDate,
		Status:    in.Status,
		CreatedAt: now.UTC(),
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	switch {
	case in.EndDate != nil:
		s.EndDate = *in.EndDate
	case plan != nil && !in.StartDate.IsZero():
		s.EndDate = in.StartDate.AddDays(plan.Duration)
	}
	return s
}

type SubscriptionPatch struct {
	MemberID  *int64  `json:"memberId"`
	PlanID    *int64  `json:"planId"`
	StartDate *Date   `json:"startDate"`
	EndDate   *Date   `json:"endDate"`
	Status    *string `json:"status"`
}

func (p SubscriptionPatch) Apply(s Subscription) Subscription {
	if p.MemberID != nil {
		s.MemberID = *p.MemberID
	}
	if p.PlanID != nil {
		s.PlanID = *p.PlanID
	}
	if p.StartDate != nil {
		s.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		s.EndDate = *p.EndDate
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	return s
}

func (s Subscription) Validate() error {
	var v validator
	v.check(s.MemberID > 0, "memberId", "is required")
	v.check(s.PlanID > 0, "planId", "is required")
	v.check(!s.StartDate.IsZero(), "startDate", "is required")
	v.check(!s.EndDate.IsZero(), "endDate", "is required")
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() {
		v.check(!s.EndDate.Before(s.StartDate), "endDate", "must not be before startDate")
	}
	switch s.Status {
	case StatusActive, StatusExpired, StatusCancelled:
	default:
		v.add("status", "must be one of active, expired, cancelled")
	}
	return v.err()
}

// IsActive reports whether the subscription has status active.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}
