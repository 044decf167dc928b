// Package kafka publishes and consumes activity events on a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"gymadmin/internal/core"
	"gymadmin/internal/events"
	"gymadmin/internal/log"
)

// logger returns the default logger tagged with the kafka component.
func logger() *slog.Logger {
	return slog.Default().With(log.FieldComponent, log.ComponentKafka)
}

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per activity entry, keyed by entity type so
// entries about the same kind of record stay ordered within a partition.
type Publisher struct {
	writer Writer
	topic  string
}

// NewPublisher creates a synchronous writer that waits for all in-sync
// replicas.
func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}, topic)
}

func NewPublisherWithWriter(w Writer, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, entry core.ActivityLogEntry) error {
	msg := events.NewActivityMessage(entry)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key()),
		Value: body,
		Time:  entry.Timestamp,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(entry.Action)},
		},
	})
	if err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	logger().DebugContext(ctx, "Published activity event",
		log.FieldOperation, log.OpPublish, "id", entry.ID, "topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Reader is the subset of *kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewReader builds a consumer-group reader for the activity topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// Consume fetches messages until ctx is cancelled. Malformed payloads are
// committed and skipped. A handler failure stops consumption with the
// offset uncommitted, since a later commit would also cover the failed
// message; the group resumes from it on the next run.
func Consume(ctx context.Context, r Reader, handler events.Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger().WarnContext(ctx, "Kafka fetch failed", "error", err)
			continue
		}

		msg, err := events.ActivityMessageFromJSON(m.Value)
		if err != nil {
			logger().ErrorContext(ctx, "Failed to unmarshal message",
				"error", err,
				"partition", m.Partition,
				"offset", m.Offset)
			if err := r.CommitMessages(ctx, m); err != nil {
				logger().WarnContext(ctx, "Kafka commit failed", "error", err)
			}
			continue
		}

		if err := handler(ctx, msg); err != nil {
			logger().ErrorContext(ctx, "Failed to handle message",
				"error", err,
				"id", msg.ID,
				"partition", m.Partition,
				"offset", m.Offset)
			return fmt.Errorf("handle message at offset %d: %w", m.Offset, err)
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			logger().WarnContext(ctx, "Kafka commit failed", "error", err)
		}
	}
}
