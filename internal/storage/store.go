// Package storage persists gym records. The memory and SQL implementations
// satisfy the same Store interface and must behave identically.
package storage

import (
	"context"
	"time"

	"gymadmin/internal/core"
)

type MemberStore interface {
	GetMember(ctx context.Context, id int64) (core.Member, error)
	ListMembers(ctx context.Context) ([]core.Member, error)
	CreateMember(ctx context.Context, m core.Member) (core.Member, error)
	UpdateMember(ctx context.Context, m core.Member) (core.Member, error)
}

type PlanStore interface {
	GetPlan(ctx context.Context, id int64) (core.MembershipPlan, error)
	ListPlans(ctx context.Context) ([]core.MembershipPlan, error)
	CreatePlan(ctx context.Context, p core.MembershipPlan) (core.MembershipPlan, error)
	UpdatePlan(ctx context.Context, p core.MembershipPlan) (core.MembershipPlan, error)
}

type SubscriptionStore interface {
	GetSubscription(ctx context.Context, id int64) (core.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
	CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
	UpdateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
}

type PaymentStore interface {
	GetPayment(ctx context.Context, id int64) (core.Payment, error)
	ListPayments(ctx context.Context) ([]core.Payment, error)
	CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
}

type AttendanceStore interface {
	GetAttendance(ctx context.Context, id int64) (core.AttendanceRecord, error)
	ListAttendance(ctx context.Context) ([]core.AttendanceRecord, error)
	CreateAttendance(ctx context.Context, a core.AttendanceRecord) (core.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, a core.AttendanceRecord) (core.AttendanceRecord, error)
	// SetCheckOut stores the check-out time. first reports whether the
	// record had no check-out before this call; concurrent callers see
	// exactly one first.
	SetCheckOut(ctx context.Context, id int64, t time.Time) (rec core.AttendanceRecord, first bool, err error)
}

type EquipmentStore interface {
	GetEquipment(ctx context.Context, id int64) (core.Equipment, error)
	ListEquipment(ctx context.Context) ([]core.Equipment, error)
	CreateEquipment(ctx context.Context, e core.Equipment) (core.Equipment, error)
	UpdateEquipment(ctx context.Context, e core.Equipment) (core.Equipment, error)
}

type SettingStore interface {
	GetSetting(ctx context.Context, key string) (core.Setting, error)
	ListSettings(ctx context.Context) ([]core.Setting, error)
	// PutSetting inserts or replaces the value stored under s.Key.
	PutSetting(ctx context.Context, s core.Setting) (core.Setting, error)
}

type ActivityStore interface {
	AppendActivity(ctx context.Context, e core.ActivityLogEntry) (core.ActivityLogEntry, error)
	// ListActivity returns entries newest first; limit <= 0 returns all.
	ListActivity(ctx context.Context, limit int) ([]core.ActivityLogEntry, error)
}

// Store is the full record store. Lists are ordered by id ascending unless
// stated otherwise. Get and Update wrap core.ErrNotFound for unknown ids.
type Store interface {
	MemberStore
	PlanStore
	SubscriptionStore
	PaymentStore
	AttendanceStore
	EquipmentStore
	SettingStore
	ActivityStore

	Ping(ctx context.Context) error
	Close() error
}
