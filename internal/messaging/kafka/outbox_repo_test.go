package kafka_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/contextutil"
	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-9")
	ev, err := kafka.NewEvent(ctx, "solicitud", "abc", "memo.render.requested", "topic", map[string]string{"a": "b"})
	assert.NoError(t, err)
	assert.Equal(t, "rid-9", ev.RequestID)
	assert.Equal(t, kafka.OutboxStatusPending, ev.Status)
	assert.JSONEq(t, `{"a":"b"}`, string(ev.Payload))
	assert.NoError(t, kafka.ValidateOutboxEvent(ev))
}

func TestOutboxRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)

	t.Run("uses transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WithArgs("o1", "", "solicitud", "abc", "memo.render.requested", "topic", []byte(`{}`), kafka.OutboxStatusPending).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		assert.NoError(t, err)
		err = repo.WithTx(tx).Create(context.Background(), kafka.OutboxEvent{
			ID: "o1", AggregateType: "solicitud", AggregateID: "abc",
			EventType: "memo.render.requested", Topic: "topic", Payload: []byte(`{}`), Status: kafka.OutboxStatusPending,
		})
		assert.NoError(t, err)
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative invalid event is rejected before sql", func(t *testing.T) {
		err := repo.Create(context.Background(), kafka.OutboxEvent{ID: "o2", Topic: "topic", Status: kafka.OutboxStatusPending})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepositoryMarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("o1", kafka.OutboxStatusFailed, kafka.OutboxStatusDead, kafka.MaxOutboxAttempts, "boom").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "o1", "boom")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepositoryPurgeSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM outbox_events")).
		WithArgs(kafka.OutboxStatusSent, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := kafka.NewOutboxRepository(db).PurgeSent(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
