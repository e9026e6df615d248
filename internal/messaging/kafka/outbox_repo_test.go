package kafka_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go-salary/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            "3f7d1c9e-1a2b-4c3d-8e9f-001122334455",
		RequestID:     "req-1",
		AggregateType: "salary",
		AggregateID:   "1",
		EventType:     "salary_created",
		Topic:         "salary.records.changed.v1",
		Payload:       []byte(`{"salary_id":1}`),
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	event := validEvent()

	t.Run("inserts pending inside tx", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WithArgs(event.ID, event.RequestID, event.AggregateType, event.AggregateID,
				event.EventType, event.Topic, event.Payload, kafka.OutboxStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)
		assert.NoError(t, repo.WithTx(tx).Create(context.Background(), event))
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid event", func(t *testing.T) {
		bad := event
		bad.Topic = ""

		err := repo.Create(context.Background(), bad)

		assert.EqualError(t, err, "outbox topic is required")
	})
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type",
		"topic", "payload", "status", "retry_count", "next_retry_at",
	}).AddRow("id-1", "req-1", "salary", "1", "salary_created",
		"salary.records.changed.v1", []byte(`{}`), kafka.OutboxStatusPending, 0, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 10, 50).
		WillReturnRows(rows)

	events, err := repo.ListPending(context.Background(), 50)

	assert.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "id-1", events[0].ID)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "1", events[0].AggregateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("id-1", kafka.OutboxStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("retry_count = retry_count + 1")).
		WithArgs("id-2", kafka.OutboxStatusFailed, "broker down").
		WillReturnError(errors.New("db down"))

	assert.NoError(t, repo.MarkSent(context.Background(), "id-1"))
	assert.Error(t, repo.MarkFailed(context.Background(), "id-2", "broker down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent(t *testing.T) {
	event := validEvent()
	event.Status = kafka.OutboxStatusPending
	assert.NoError(t, kafka.ValidateOutboxEvent(event))

	event.Status = "unknown"
	assert.Error(t, kafka.ValidateOutboxEvent(event))

	event.Status = kafka.OutboxStatusPending
	event.Payload = nil
	assert.Error(t, kafka.ValidateOutboxEvent(event))
}
