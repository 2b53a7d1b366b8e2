package repositories

import (
	"context"
	"errors"
	"time"

	"it-asset-management/internal/adapters/persistence/models"
)

var (
	// ErrDuplicateSerial is returned when a serial number is already stored
	ErrDuplicateSerial = errors.New("duplicate serial number")
	// ErrDuplicateAssetTag is returned when every generated asset tag collided
	ErrDuplicateAssetTag = errors.New("duplicate asset tag")
	// ErrResetTokenNotFound is returned when a reset token is unknown or already consumed
	ErrResetTokenNotFound = errors.New("reset token not found")
	// ErrResetTokenExpired is returned when saving a record whose expiry has already passed
	ErrResetTokenExpired = errors.New("reset token already expired")
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePasswordByEmail(ctx context.Context, email, hash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email, excludeID string) (bool, error)
}

// EquipmentRepository defines equipment repository interface
type EquipmentRepository interface {
	// Create allocates the next category sequence, asks tag for the asset tag and inserts the row.
	// attempt starts at 0 and grows on every retry after a tag collision.
	Create(ctx context.Context, equipment *models.Equipment, tag func(seq int64, attempt int) string) error
	// GetByID returns a record that is not soft-deleted
	GetByID(ctx context.Context, id string) (*models.Equipment, error)
	// FindByID returns a record regardless of its deleted flag
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
	ListActive(ctx context.Context) ([]*models.Equipment, error)
	ListRemoved(ctx context.Context) ([]*models.Equipment, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	Summary(ctx context.Context) (*models.EquipmentSummary, error)
	SerialExists(ctx context.Context, serial, excludeID string) (bool, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// OutboxRepository defines notification outbox repository interface
type OutboxRepository interface {
	Create(ctx context.Context, n *models.NotificationOutbox) error
	// Claim moves a due pending row to processing. ok is false when another worker owns it.
	Claim(ctx context.Context, id string, now time.Time) (n *models.NotificationOutbox, ok bool, err error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]string, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkRetry(ctx context.Context, id string, attempts int, lastErr string, next time.Time) error
	MarkDead(ctx context.Context, id string, attempts int, lastErr string) error
	ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error)
}

// ResetTokenRecord is what a reset token resolves to
type ResetTokenRecord struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetTokenStore keeps password reset tokens keyed by their hash
type ResetTokenStore interface {
	Save(ctx context.Context, tokenHash string, rec ResetTokenRecord) error
	Get(ctx context.Context, tokenHash string) (*ResetTokenRecord, error)
	// Consume returns and removes the record in one step; a second call fails
	Consume(ctx context.Context, tokenHash string) (*ResetTokenRecord, error)
	Delete(ctx context.Context, tokenHash string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
