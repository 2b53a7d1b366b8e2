package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"sync"
	"time"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/config"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/mailer"
	"it-asset-management/internal/pkg/pdf"
)

// ============================================================
// Assignment notifier: outbox + worker pool
// ============================================================

const (
	maxBackoff      = time.Hour
	staleClaimAfter = 5 * time.Minute
)

// NotificationService e-mails acknowledgement PDFs for new assignments.
// Every notification is first written to the outbox; the in-memory queue
// only carries outbox ids and may drop them when full, since the
// dispatcher re-reads due rows on schedule.
type NotificationService struct {
	outbox repositories.OutboxRepository
	mailer Mailer
	cfg    config.NotifyConfig
	queue  chan string
	now    func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service
func NewNotificationService(outbox repositories.OutboxRepository, m Mailer, cfg config.NotifyConfig) *NotificationService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &NotificationService{
		outbox:   outbox,
		mailer:   m,
		cfg:      cfg,
		queue:    make(chan string, cfg.QueueSize),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Enqueue records an assignment notification. Errors are logged, never returned.
func (s *NotificationService) Enqueue(ctx context.Context, equipment *models.Equipment) {
	if equipment.EmployeeEmail == nil || *equipment.EmployeeEmail == "" {
		log.Printf("⚠️ Assignment notification skipped for %s: no employee email", equipment.AssetID)
		return
	}

	row := &models.NotificationOutbox{
		EquipmentID:   equipment.ID,
		AssetID:       equipment.AssetID,
		Category:      equipment.Category,
		Model:         deref(equipment.Model),
		SerialNumber:  deref(equipment.SerialNumber),
		Status:        string(equipment.Status),
		Location:      deref(equipment.Location),
		Recipient:     *equipment.EmployeeEmail,
		AssigneeName:  deref(equipment.AssigneeName),
		Position:      deref(equipment.Position),
		Department:    deref(equipment.Department),
		PhoneNumber:   deref(equipment.PhoneNumber),
		State:         domain.OutboxPending,
		NextAttemptAt: s.now(),
	}

	// The request may finish before the write does
	if err := s.outbox.Create(context.WithoutCancel(ctx), row); err != nil {
		log.Printf("❌ Failed to queue assignment notification for %s: %v", equipment.AssetID, err)
		return
	}

	s.push(row.ID)
	log.Printf("📧 Assignment notification queued: %s → %s", equipment.AssetID, row.Recipient)
}

// push hands an id to the workers without blocking
func (s *NotificationService) push(id string) bool {
	select {
	case s.queue <- id:
		return true
	default:
		log.Printf("⚠️ Notification queue full, %s left for the dispatcher", id)
		return false
	}
}

// Start launches the worker pool
func (s *NotificationService) Start() {
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i + 1)
	}
	log.Printf("🚀 NotificationService started (%d workers)", s.cfg.Workers)
}

// Stop signals the workers and waits for in-flight deliveries
func (s *NotificationService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	log.Println("🛑 NotificationService stopped")
}

func (s *NotificationService) worker(n int) {
	defer s.wg.Done()
	for {
		select {
		case id := <-s.queue:
			if err := s.Process(context.Background(), id); err != nil {
				log.Printf("❌ Notifier worker %d: %v", n, err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// Process delivers a single outbox row. A row another worker already
// claimed, or one not yet due, is skipped.
func (s *NotificationService) Process(ctx context.Context, id string) error {
	// 1. Claim
	row, ok, err := s.outbox.Claim(ctx, id, s.now())
	if err != nil {
		return fmt.Errorf("claim %s: %w", id, err)
	}
	if !ok {
		return nil
	}

	// 2. Deliver
	sendErr := s.deliver(ctx, row)
	if sendErr == nil {
		if err := s.outbox.MarkSent(ctx, row.ID, s.now()); err != nil {
			return fmt.Errorf("mark sent %s: %w", row.ID, err)
		}
		log.Printf("✅ Acknowledgement sent: %s → %s", row.AssetID, row.Recipient)
		return nil
	}

	// 3. Retry or dead-letter
	attempts := row.Attempts + 1
	if attempts >= s.cfg.MaxAttempts {
		log.Printf("❌ Acknowledgement for %s dead after %d attempts: %v", row.AssetID, attempts, sendErr)
		return s.outbox.MarkDead(ctx, row.ID, attempts, sendErr.Error())
	}

	next := s.now().Add(s.backoff(attempts))
	log.Printf("⚠️ Acknowledgement for %s failed (attempt %d/%d), retry at %s: %v",
		row.AssetID, attempts, s.cfg.MaxAttempts, next.Format(time.RFC3339), sendErr)
	return s.outbox.MarkRetry(ctx, row.ID, attempts, sendErr.Error(), next)
}

func (s *NotificationService) deliver(ctx context.Context, row *models.NotificationOutbox) error {
	doc, err := pdf.RenderAcknowledgement(
		pdf.Asset{
			AssetID:      row.AssetID,
			Category:     row.Category,
			Model:        row.Model,
			SerialNumber: row.SerialNumber,
			Status:       row.Status,
			Location:     row.Location,
		},
		pdf.Assignee{
			Name:     row.AssigneeName,
			Position: row.Position,
			Email:    row.Recipient,
		},
		s.now(),
	)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	return s.mailer.Send(sendCtx, mailer.Message{
		To:      row.Recipient,
		Subject: AssignmentSubject(row.AssetID),
		HTML:    assignmentBody(row),
		Attachments: []mailer.Attachment{
			{Filename: pdf.Filename(row.AssetID), Data: doc},
		},
	})
}

// backoff doubles the base delay per failed attempt, capped at one hour
func (s *NotificationService) backoff(attempts int) time.Duration {
	d := s.cfg.Backoff
	if d <= 0 {
		d = 30 * time.Second
	}
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// DispatchDue pushes due outbox rows onto the worker queue and returns how many were queued
func (s *NotificationService) DispatchDue(ctx context.Context) (int, error) {
	ids, err := s.outbox.ListDue(ctx, s.now(), s.cfg.QueueSize)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, id := range ids {
		if !s.push(id) {
			break
		}
		queued++
	}
	return queued, nil
}

// ReleaseStale returns rows abandoned mid-delivery to the pending state
func (s *NotificationService) ReleaseStale(ctx context.Context) (int64, error) {
	n, err := s.outbox.ReleaseStale(ctx, s.now().Add(-staleClaimAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("⚠️ Released %d stale notification claims", n)
	}
	return n, nil
}

// AssignmentSubject is the subject line of an acknowledgement e-mail
func AssignmentSubject(assetID string) string {
	return "IT Asset Assignment: " + assetID
}

func assignmentBody(row *models.NotificationOutbox) string {
	name := row.AssigneeName
	if name == "" {
		name = "Colleague"
	}
	return fmt.Sprintf(`<p>Dear %s,</p>
<p>The following IT asset has been assigned to you:</p>
<ul>
<li><strong>Asset ID:</strong> %s</li>
<li><strong>Category:</strong> %s</li>
<li><strong>Model:</strong> %s</li>
<li><strong>Serial Number:</strong> %s</li>
</ul>
<p>Please review the attached acknowledgement form, sign it and return it to the IT department.</p>
<p>IT Asset Management</p>`,
		html.EscapeString(name),
		html.EscapeString(row.AssetID),
		html.EscapeString(row.Category),
		html.EscapeString(orNA(row.Model)),
		html.EscapeString(orNA(row.SerialNumber)),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
