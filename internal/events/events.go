// Package events defines the activity event published to the message bus
// after each successful activity-log append.
package events

import (
	"context"
	"encoding/json"
	"time"

	"gymadmin/internal/core"
)

// ActivityMessage is the wire form of an activity-log entry.
type ActivityMessage struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	EntityID    *int64    `json:"entityId"`
	EntityType  *string   `json:"entityType"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewActivityMessage copies a stored entry into its wire form.
func NewActivityMessage(e core.ActivityLogEntry) *ActivityMessage {
	return &ActivityMessage{
		ID:          e.ID,
		Action:      e.Action,
		Description: e.Description,
		EntityID:    e.EntityID,
		EntityType:  e.EntityType,
		Timestamp:   e.Timestamp,
	}
}

// Key is used for partitioning; entries without an entity share one key.
func (m *ActivityMessage) Key() string {
	if m.EntityType == nil {
		return "none"
	}
	return *m.EntityType
}

func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Publisher sends activity entries to an external bus.
type Publisher interface {
	Publish(ctx context.Context, entry core.ActivityLogEntry) error
	Close() error
}

// Handler processes one consumed message. A non-nil error requests redelivery.
type Handler func(ctx context.Context, msg *ActivityMessage) error

// Nop discards every entry. It is used when EVENTS_BACKEND is none.
type Nop struct{}

func (Nop) Publish(context.Context, core.ActivityLogEntry) error { return nil }

func (Nop) Close() error { return nil }
