package repositories

import (
	"context"
	"errors"
	"time"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxTagAttempts bounds retries when a generated asset tag collides
const maxTagAttempts = 3

// equipmentRepository implements EquipmentRepository interface
type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

// Create inserts equipment with a freshly allocated asset tag.
// The sequence row is locked for the length of the transaction so two
// concurrent creates in one category never see the same value.
// A rolled back attempt also rolls back the sequence, so tag must vary
// its output with attempt for a retry to produce a new value.
func (r *equipmentRepository) Create(ctx context.Context, equipment *models.Equipment, tag func(seq int64, attempt int) string) error {
	for attempt := 0; attempt < maxTagAttempts; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			seq, err := nextSequence(tx, equipment.Category)
			if err != nil {
				return err
			}
			equipment.AssetID = tag(seq, attempt)
			return tx.Create(equipment).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		// Either the serial lost a race or the tag collided
		if equipment.SerialNumber != nil && *equipment.SerialNumber != "" {
			taken, serr := r.SerialExists(ctx, *equipment.SerialNumber, "")
			if serr != nil {
				return serr
			}
			if taken {
				return ErrDuplicateSerial
			}
		}
		equipment.ID = ""
	}
	return ErrDuplicateAssetTag
}

func nextSequence(tx *gorm.DB, category string) (int64, error) {
	var seq models.CategorySequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("category = ?", category).
		First(&seq).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First allocation for this category: continue from existing records
		var count int64
		if err := tx.Model(&models.Equipment{}).Where("category = ?", category).Count(&count).Error; err != nil {
			return 0, err
		}
		seq = models.CategorySequence{Category: category, Value: count + 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.Value, nil
	case err != nil:
		return 0, err
	}

	seq.Value++
	if err := tx.Model(&models.CategorySequence{}).
		Where("category = ?", category).
		Update("value", seq.Value).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// GetByID gets a non-deleted equipment by ID
func (r *equipmentRepository) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	var equipment models.Equipment
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&equipment).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

// FindByID gets an equipment by ID including soft-deleted rows
func (r *equipmentRepository) FindByID(ctx context.Context, id string) (*models.Equipment, error) {
	var equipment models.Equipment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&equipment).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

// ListActive lists non-deleted equipment, newest first
func (r *equipmentRepository) ListActive(ctx context.Context) ([]*models.Equipment, error) {
	var list []*models.Equipment
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListRemoved lists non-deleted equipment in Removed status, most recently updated first
func (r *equipmentRepository) ListRemoved(ctx context.Context) ([]*models.Equipment, error) {
	var list []*models.Equipment
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_deleted = ?", domain.StatusRemoved, false).
		Order("updated_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CountByCategory counts non-deleted equipment in a category
func (r *equipmentRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("category = ? AND is_deleted = ?", category, false).
		Count(&count).Error
	return count, err
}

// Summary counts equipment per status.
// Removed counts every Removed row, deleted or not; the other counters skip deleted rows.
func (r *equipmentRepository) Summary(ctx context.Context) (*models.EquipmentSummary, error) {
	var summary models.EquipmentSummary
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Select(`COALESCE(SUM(CASE WHEN is_deleted = false THEN 1 ELSE 0 END), 0) AS total_assets,
			COALESCE(SUM(CASE WHEN is_deleted = false AND status = ? THEN 1 ELSE 0 END), 0) AS in_use,
			COALESCE(SUM(CASE WHEN is_deleted = false AND status = ? THEN 1 ELSE 0 END), 0) AS in_stock,
			COALESCE(SUM(CASE WHEN is_deleted = false AND status = ? THEN 1 ELSE 0 END), 0) AS damaged,
			COALESCE(SUM(CASE WHEN is_deleted = false AND status = ? THEN 1 ELSE 0 END), 0) AS e_waste,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS removed`,
			domain.StatusInUse, domain.StatusInStock, domain.StatusDamaged, domain.StatusEWaste, domain.StatusRemoved).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// SerialExists checks if a serial number is used by any record other than excludeID
func (r *equipmentRepository) SerialExists(ctx context.Context, serial, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Equipment{}).Where("serial_number = ?", serial)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// Update applies column updates to one equipment
func (r *equipmentRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSerial
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete marks an equipment as deleted
func (r *equipmentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
