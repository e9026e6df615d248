package producer

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-salary/internal/events"
	"go-salary/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeOutboxRepo struct {
	listPendingFn func(ctx context.Context, limit int) ([]kafka.OutboxEvent, error)
	sent          []string
	failed        map[string]string
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error { return nil }

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	if f.listPendingFn != nil {
		return f.listPendingFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	return nil
}

type fakeWriter struct {
	writeFn  func(msg kafkago.Message) error
	messages []kafkago.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, msg := range msgs {
		if f.writeFn != nil {
			if err := f.writeFn(msg); err != nil {
				return err
			}
		}
		f.messages = append(f.messages, msg)
	}
	return nil
}

func outboxEvent(id, aggregateID string) kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            id,
		RequestID:     "req-" + id,
		AggregateType: "salary",
		AggregateID:   aggregateID,
		EventType:     events.SalaryCreatedEventType,
		Topic:         events.SalaryChangedTopic,
		Payload:       []byte(`{"salary_id":1}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProcessPendingEvents(t *testing.T) {
	t.Run("publishes and marks sent", func(t *testing.T) {
		repo := &fakeOutboxRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
				assert.Equal(t, batchSize, limit)
				return []kafka.OutboxEvent{outboxEvent("a", "1"), outboxEvent("b", "2")}, nil
			},
		}
		writer := &fakeWriter{}

		sent, err := ProcessPendingEvents(context.Background(), repo, writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, []string{"a", "b"}, repo.sent)
		if assert.Len(t, writer.messages, 2) {
			msg := writer.messages[0]
			assert.Equal(t, events.SalaryChangedTopic, msg.Topic)
			assert.Equal(t, "1", string(msg.Key))
			assert.Equal(t, events.SalaryCreatedEventType, headerValue(msg, "event_type"))
			assert.Equal(t, "req-a", headerValue(msg, "request_id"))
		}
	})

	t.Run("publish failure marks failed and continues", func(t *testing.T) {
		repo := &fakeOutboxRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
				return []kafka.OutboxEvent{outboxEvent("a", "1"), outboxEvent("b", "2")}, nil
			},
		}
		writer := &fakeWriter{
			writeFn: func(msg kafkago.Message) error {
				if string(msg.Key) == "1" {
					return errors.New("broker down")
				}
				return nil
			},
		}

		sent, err := ProcessPendingEvents(context.Background(), repo, writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []string{"b"}, repo.sent)
		assert.Equal(t, "broker down", repo.failed["a"])
	})

	t.Run("list error", func(t *testing.T) {
		repo := &fakeOutboxRepo{
			listPendingFn: func(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
				return nil, errors.New("db down")
			},
		}

		sent, err := ProcessPendingEvents(context.Background(), repo, &fakeWriter{}, zap.NewNop())

		assert.Error(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("nothing pending", func(t *testing.T) {
		writer := &fakeWriter{}
		sent, err := ProcessPendingEvents(context.Background(), &fakeOutboxRepo{}, writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Equal(t, 0, sent)
		assert.Empty(t, writer.messages)
	})
}
