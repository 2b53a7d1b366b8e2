package repositories

import (
	"context"
	"time"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/core/domain"

	"gorm.io/gorm"
)

// outboxRepository implements OutboxRepository interface
type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new notification outbox repository
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// Create stores a pending notification
func (r *outboxRepository) Create(ctx context.Context, n *models.NotificationOutbox) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// Claim atomically flips a due pending row to processing and returns it
func (r *outboxRepository) Claim(ctx context.Context, id string, now time.Time) (*models.NotificationOutbox, bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("id = ? AND state = ? AND next_attempt_at <= ?", id, domain.OutboxPending, now).
		Updates(map[string]interface{}{
			"state":      domain.OutboxProcessing,
			"claimed_at": now,
		})
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	var n models.NotificationOutbox
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, false, err
	}
	return &n, true, nil
}

// ListDue returns ids of pending rows whose next attempt is due, oldest first
func (r *outboxRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("state = ? AND next_attempt_at <= ?", domain.OutboxPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// MarkSent records a successful delivery
func (r *outboxRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":      domain.OutboxSent,
			"sent_at":    at,
			"last_error": "",
		}).Error
}

// MarkRetry puts a failed row back to pending with its next attempt time
func (r *outboxRepository) MarkRetry(ctx context.Context, id string, attempts int, lastErr string, next time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":           domain.OutboxPending,
			"attempts":        attempts,
			"last_error":      lastErr,
			"next_attempt_at": next,
			"claimed_at":      nil,
		}).Error
}

// MarkDead parks a row that exhausted its attempts
func (r *outboxRepository) MarkDead(ctx context.Context, id string, attempts int, lastErr string) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":      domain.OutboxDead,
			"attempts":   attempts,
			"last_error": lastErr,
		}).Error
}

// ReleaseStale returns rows stuck in processing since before claimedBefore to pending
func (r *outboxRepository) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("state = ? AND claimed_at < ?", domain.OutboxProcessing, claimedBefore).
		Updates(map[string]interface{}{
			"state":      domain.OutboxPending,
			"claimed_at": nil,
		})
	return result.RowsAffected, result.Error
}
