package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/core/domain"
)

func assignedLaptop() *models.Equipment {
	return &models.Equipment{
		ID:            laptopID,
		AssetID:       "LAP-001-23456",
		Category:      "Laptop",
		Model:         strPtr("ThinkPad X1"),
		SerialNumber:  strPtr("SN-1"),
		Status:        domain.StatusInUse,
		AssigneeName:  strPtr("Alice <Ops>"),
		Position:      strPtr("Engineer"),
		EmployeeEmail: strPtr("alice@example.com"),
	}
}

func newTestNotifier(outbox *memOutbox, m *fakeMailer) (*NotificationService, *time.Time) {
	now := fixedClock()
	svc := NewNotificationService(outbox, m, testConfig().Notify)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestNotificationService_EnqueueWritesOutboxRow(t *testing.T) {
	outbox := newMemOutbox()
	svc, _ := newTestNotifier(outbox, &fakeMailer{})

	svc.Enqueue(context.Background(), assignedLaptop())

	require.Len(t, svc.queue, 1)
	id := <-svc.queue
	row := outbox.get(id)
	assert.Equal(t, domain.OutboxPending, row.State)
	assert.Equal(t, "alice@example.com", row.Recipient)
	assert.Equal(t, "LAP-001-23456", row.AssetID)
	assert.Equal(t, "ThinkPad X1", row.Model)
	assert.Equal(t, fixedClock(), row.NextAttemptAt)
}

func TestNotificationService_EnqueueFailuresAreSwallowed(t *testing.T) {
	outbox := newMemOutbox()
	svc, _ := newTestNotifier(outbox, &fakeMailer{})

	noEmail := assignedLaptop()
	noEmail.EmployeeEmail = nil
	svc.Enqueue(context.Background(), noEmail)

	outbox.createErr = errors.New("db down")
	svc.Enqueue(context.Background(), assignedLaptop())

	assert.Empty(t, svc.queue)
	assert.Empty(t, outbox.rows)
}

func TestNotificationService_ProcessSendsAcknowledgement(t *testing.T) {
	outbox := newMemOutbox()
	m := &fakeMailer{}
	svc, _ := newTestNotifier(outbox, m)

	svc.Enqueue(context.Background(), assignedLaptop())
	id := <-svc.queue

	require.NoError(t, svc.Process(context.Background(), id))

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "IT Asset Assignment: LAP-001-23456", msg.Subject)
	assert.Contains(t, msg.HTML, "Alice &lt;Ops&gt;")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "asset-acknowledgement-LAP-001-23456.pdf", msg.Attachments[0].Filename)
	assert.True(t, bytes.HasPrefix(msg.Attachments[0].Data, []byte("%PDF")))

	row := outbox.get(id)
	assert.Equal(t, domain.OutboxSent, row.State)
	require.NotNil(t, row.SentAt)

	// Already sent: a second delivery attempt is a no-op
	require.NoError(t, svc.Process(context.Background(), id))
	assert.Len(t, m.sent, 1)
}

func TestNotificationService_RetryThenDeadLetter(t *testing.T) {
	outbox := newMemOutbox()
	m := &fakeMailer{err: errors.New("smtp: 421 try later")}
	svc, now := newTestNotifier(outbox, m)

	svc.Enqueue(context.Background(), assignedLaptop())
	id := <-svc.queue

	// attempt 1 → retry after base backoff
	require.NoError(t, svc.Process(context.Background(), id))
	row := outbox.get(id)
	assert.Equal(t, domain.OutboxPending, row.State)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, fixedClock().Add(time.Minute), row.NextAttemptAt)
	assert.Contains(t, row.LastError, "421")

	// not yet due
	require.NoError(t, svc.Process(context.Background(), id))
	assert.Equal(t, 1, outbox.get(id).Attempts)

	// attempt 2 → backoff doubles
	*now = now.Add(time.Minute)
	require.NoError(t, svc.Process(context.Background(), id))
	row = outbox.get(id)
	assert.Equal(t, 2, row.Attempts)
	assert.Equal(t, now.Add(2*time.Minute), row.NextAttemptAt)

	// attempt 3 → dead
	*now = now.Add(2 * time.Minute)
	require.NoError(t, svc.Process(context.Background(), id))
	row = outbox.get(id)
	assert.Equal(t, domain.OutboxDead, row.State)
	assert.Equal(t, 3, row.Attempts)
}

func TestNotificationService_Backoff(t *testing.T) {
	svc, _ := newTestNotifier(newMemOutbox(), &fakeMailer{})

	assert.Equal(t, time.Minute, svc.backoff(1))
	assert.Equal(t, 4*time.Minute, svc.backoff(3))
	assert.Equal(t, time.Hour, svc.backoff(20))
}

func TestNotificationService_DispatchDueStopsWhenQueueFull(t *testing.T) {
	outbox := newMemOutbox()
	svc, _ := newTestNotifier(outbox, &fakeMailer{})

	for i := 0; i < 6; i++ {
		require.NoError(t, outbox.Create(context.Background(), &models.NotificationOutbox{
			Recipient:     "x@example.com",
			State:         domain.OutboxPending,
			NextAttemptAt: fixedClock(),
		}))
	}

	n, err := svc.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, svc.queue, 4)
}

func TestNotificationService_ReleaseStale(t *testing.T) {
	outbox := newMemOutbox()
	svc, now := newTestNotifier(outbox, &fakeMailer{})

	svc.Enqueue(context.Background(), assignedLaptop())
	id := <-svc.queue
	_, ok, err := outbox.Claim(context.Background(), id, *now)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := svc.ReleaseStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	*now = now.Add(10 * time.Minute)
	n, err = svc.ReleaseStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, domain.OutboxPending, outbox.get(id).State)
}

func TestNotificationService_WorkersDeliver(t *testing.T) {
	outbox := newMemOutbox()
	m := &fakeMailer{}
	svc, _ := newTestNotifier(outbox, m)

	svc.Start()
	svc.Enqueue(context.Background(), assignedLaptop())

	assert.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.sent) == 1
	}, 5*time.Second, 10*time.Millisecond)

	svc.Stop()
}
