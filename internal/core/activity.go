package core

import (
	"strings"
	"time"
)

// Activity actions.
const (
	ActionMemberAdded         = "member_added"
	ActionMemberUpdated       = "member_updated"
	ActionPlanAdded           = "plan_added"
	ActionPlanUpdated         = "plan_updated"
	ActionSubscriptionAdded   = "subscription_added"
	ActionSubscriptionUpdated = "subscription_updated"
	ActionPaymentReceived     = "payment_received"
	ActionCheckIn             = "check_in"
	ActionCheckOut            = "check_out"
	ActionEquipmentAdded      = "equipment_added"
	ActionEquipmentUpdated    = "equipment_updated"
)

// Entity types referenced by activity entries.
const (
	EntityMembers       = "members"
	EntityPlans         = "membership_plans"
	EntitySubscriptions = "subscriptions"
	EntityPayments      = "payments"
	EntityAttendance    = "attendance"
	EntityEquipment     = "equipment"
)

// ActivityLogEntry is one line of the append-only audit trail.
type ActivityLogEntry struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	EntityID    *int64    `json:"entityId"`
	EntityType  *string   `json:"entityType"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewActivity builds an entry referencing one entity.
func NewActivity(action, description string, entityID int64, entityType string, at time.Time) ActivityLogEntry {
	return ActivityLogEntry{
		Action:      action,
		Description: description,
		EntityID:    &entityID,
		EntityType:  &entityType,
		Timestamp:   at.UTC(),
	}
}

// Setting keys with defaults.
const (
	SettingAppName       = "appName"
	SettingCurrency      = "currency"
	SettingBusinessHours = "businessHours"
)

// Setting is a tenant-configurable display value.
type Setting struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SettingUpdate is the PATCH body for a setting.
type SettingUpdate struct {
	Value *string `json:"value"`
}

func (u SettingUpdate) Validate() error {
	var v validator
	v.check(u.Value != nil, "value", "is required")
	return v.err()
}

// ValidateSettingKey checks a key taken from a path.
func ValidateSettingKey(key string) error {
	var v validator
	v.required("key", key)
	v.maxLen("key", key, 100)
	v.check(!strings.ContainsAny(key, " \t\r\n/"), "key", "must not contain whitespace or slashes")
	return v.err()
}
