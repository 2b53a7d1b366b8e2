package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxClaim(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("already claimed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOutboxRepository(db)

		mock.ExpectExec("UPDATE `notification_outbox` SET .* WHERE id = \\? AND state = \\? AND next_attempt_at <= \\?").
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, ok, err := repo.Claim(context.Background(), "n1", now)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, n)
	})

	t.Run("claimed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOutboxRepository(db)

		mock.ExpectExec("UPDATE `notification_outbox` SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT \\* FROM `notification_outbox` WHERE id = \\?").
			WithArgs("n1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "recipient", "state", "attempts"}).
				AddRow("n1", "jane@example.com", "processing", 0))

		n, ok, err := repo.Claim(context.Background(), "n1", now)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "jane@example.com", n.Recipient)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxListDue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT `id` FROM `notification_outbox` WHERE state = \\? AND next_attempt_at <= \\? ORDER BY next_attempt_at ASC LIMIT 50").
		WithArgs("pending", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("n1").AddRow("n2"))

	ids, err := repo.ListDue(context.Background(), now, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2"}, ids)
}

func TestOutboxReleaseStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	mock.ExpectExec("UPDATE `notification_outbox` SET .* WHERE state = \\? AND claimed_at < \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ReleaseStale(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
