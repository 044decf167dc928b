package backend

import (
	"context"
	"time"

	"gymadmin/internal/events"
	"gymadmin/internal/services"
	"gymadmin/internal/storage"
)

// CleanupFunc releases what a backend opened.
type CleanupFunc func() error

// Result holds the assembled service and its cleanup. Store and Publisher
// are the parts the service was built from.
type Result struct {
	Service   *services.GymService
	Store     storage.Store
	Publisher events.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type   StoreType
	Events EventsType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// AMQP specific
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Kafka specific
	KafkaBrokers []string
	KafkaTopic   string

	Location *time.Location
}

// StoreType selects the storage implementation.
type StoreType string

const (
	MemoryStore   StoreType = "memory"
	SQLiteStore   StoreType = "sqlite"
	PostgresStore StoreType = "postgres"
)

func (t StoreType) String() string {
	return string(t)
}

// IsValid returns true if the store type is known
func (t StoreType) IsValid() bool {
	switch t {
	case MemoryStore, SQLiteStore, PostgresStore:
		return true
	default:
		return false
	}
}

// EventsType selects where activity events are published.
type EventsType string

const (
	NoEvents    EventsType = "none"
	AMQPEvents  EventsType = "amqp"
	KafkaEvents EventsType = "kafka"
)

func (t EventsType) String() string {
	return string(t)
}

func (t EventsType) IsValid() bool {
	switch t {
	case NoEvents, AMQPEvents, KafkaEvents:
		return true
	default:
		return false
	}
}
