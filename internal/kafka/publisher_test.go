package kafka

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"gymadmin/internal/core"
	"gymadmin/internal/events"
)

type stubWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisherWritesKeyedMessage(t *testing.T) {
	w := &stubWriter{}
	p := NewPublisherWithWriter(w, "gym.activity")

	at := time.Date(2025, 4, 2, 18, 5, 0, 0, time.UTC)
	entry := core.NewActivity(core.ActionMemberAdded, "New member added: Jane Doe", 1, core.EntityMembers, at)
	entry.ID = 10

	require.NoError(t, p.Publish(context.Background(), entry))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	require.Equal(t, "members", string(msg.Key))
	require.Equal(t, at, msg.Time)
	require.Equal(t, []kafka.Header{{Key: "action", Value: []byte("member_added")}}, msg.Headers)

	decoded, err := events.ActivityMessageFromJSON(msg.Value)
	require.NoError(t, err)
	require.Equal(t, int64(10), decoded.ID)
	require.Equal(t, "New member added: Jane Doe", decoded.Description)

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestPublisherLogsWithComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	p := NewPublisherWithWriter(&stubWriter{}, "gym.activity")
	require.NoError(t, p.Publish(context.Background(), core.ActivityLogEntry{ID: 3, Action: core.ActionCheckIn}))

	require.Contains(t, buf.String(), `"component":"kafka"`)
	require.Contains(t, buf.String(), `"operation":"publish"`)
}

func TestPublisherWrapsWriteError(t *testing.T) {
	p := NewPublisherWithWriter(&stubWriter{err: errors.New("leader not available")}, "gym.activity")

	err := p.Publish(context.Background(), core.ActivityLogEntry{ID: 1, Action: core.ActionCheckIn})
	require.Error(t, err)
	require.Contains(t, err.Error(), "write to gym.activity")
}

type stubReader struct {
	messages    []kafka.Message
	commits     []int64
	cancelAfter context.CancelFunc
}

func (r *stubReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		r.cancelAfter()
		return kafka.Message{}, ctx.Err()
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *stubReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.commits = append(r.commits, m.Offset)
	}
	return nil
}

func (r *stubReader) Close() error { return nil }

func TestConsumeCommitsHandledAndMalformed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	good, err := events.NewActivityMessage(core.ActivityLogEntry{ID: 5, Action: core.ActionCheckOut}).ToJSON()
	require.NoError(t, err)

	reader := &stubReader{
		messages: []kafka.Message{
			{Offset: 1, Value: good},
			{Offset: 2, Value: []byte("not json")},
			{Offset: 3, Value: good},
		},
		cancelAfter: cancel,
	}

	var handled []int64
	err = Consume(ctx, reader, func(_ context.Context, msg *events.ActivityMessage) error {
		handled = append(handled, msg.ID)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []int64{5, 5}, handled)
	require.Equal(t, []int64{1, 2, 3}, reader.commits)
}

func TestConsumeStopsOnHandlerFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	good, err := events.NewActivityMessage(core.ActivityLogEntry{ID: 5, Action: core.ActionCheckOut}).ToJSON()
	require.NoError(t, err)

	reader := &stubReader{
		messages: []kafka.Message{
			{Offset: 1, Value: good},
			{Offset: 2, Value: []byte("not json")},
			{Offset: 3, Value: good},
			{Offset: 4, Value: good},
		},
		cancelAfter: cancel,
	}

	var handled []int64
	calls := 0
	downstream := errors.New("downstream unavailable")

	err = Consume(ctx, reader, func(_ context.Context, msg *events.ActivityMessage) error {
		calls++
		if calls == 2 {
			return downstream
		}
		handled = append(handled, msg.ID)
		return nil
	})
	require.ErrorIs(t, err, downstream)
	require.Equal(t, []int64{5}, handled)
	// Nothing at or after the failed offset is committed or fetched.
	require.Equal(t, []int64{1, 2}, reader.commits)
	require.Len(t, reader.messages, 1)
}
