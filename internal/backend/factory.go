package backend

import (
	"context"
	"errors"
	"fmt"

	"gymadmin/internal/amqp"
	"gymadmin/internal/events"
	"gymadmin/internal/kafka"
	"gymadmin/internal/log"
	"gymadmin/internal/services"
	"gymadmin/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the store, connects the event publisher and builds
// the service on top. A publisher that cannot connect is logged and
// replaced by events.Nop so the API keeps serving.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}
	publisher := f.createPublisher(config)

	opts := []services.Option{
		services.WithPublisher(publisher),
		services.WithLogger(f.logger.WithComponent(log.ComponentService)),
	}
	if config.Location != nil {
		opts = append(opts, services.WithLocation(config.Location))
	}
	svc := services.NewGymService(store, opts...)

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldBackend, config.Type.String(),
		"events", publisherName(config),
		"timezone", svc.Location().String())

	return &Result{
		Service:   svc,
		Store:     store,
		Publisher: publisher,
		Cleanup:   svc.Close,
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteStore:
		store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return store, nil
	case PostgresStore:
		store, err := storage.NewPostgresStore(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres store")
		return store, nil
	case MemoryStore:
		f.logger.Info("Initialized memory store")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createPublisher(config Config) events.Publisher {
	switch config.Events {
	case AMQPEvents:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			return events.Nop{}
		}
		f.logger.Info("Initialized AMQP client",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return client
	case KafkaEvents:
		f.logger.Info("Initialized Kafka publisher",
			"brokers", config.KafkaBrokers,
			"topic", config.KafkaTopic)
		return kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic)
	default:
		return events.Nop{}
	}
}

func publisherName(config Config) string {
	if config.Events == "" {
		return NoEvents.String()
	}
	return config.Events.String()
}

// ErrNoStore is returned by OpenStore for a config without a store type.
var ErrNoStore = errors.New("no store configured")

// OpenStore opens only the store, for tools that do not need the service.
func OpenStore(ctx context.Context, config Config) (storage.Store, error) {
	if config.Type == "" {
		return nil, ErrNoStore
	}
	f := &DefaultFactory{logger: log.Nop()}
	return f.createStore(ctx, config)
}
