package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EquipmentService handles the asset inventory
type EquipmentService struct {
	repo     repositories.EquipmentRepository
	notifier AssignmentNotifier
	now      func() time.Time
}

// NewEquipmentService creates a new equipment service
func NewEquipmentService(repo repositories.EquipmentRepository, notifier AssignmentNotifier) *EquipmentService {
	return &EquipmentService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateEquipmentInput represents create equipment input.
// Date fields are ISO-8601 strings; unparseable dates are stored as null.
type CreateEquipmentInput struct {
	Category          *string  `json:"category"`
	Status            *string  `json:"status"`
	Model             *string  `json:"model"`
	SerialNumber      *string  `json:"serialNumber"`
	WarrantyInfo      *string  `json:"warrantyInfo"`
	Location          *string  `json:"location"`
	Comment           *string  `json:"comment"`
	AssigneeName      *string  `json:"assigneeName"`
	Position          *string  `json:"position"`
	EmployeeEmail     *string  `json:"employeeEmail"`
	PhoneNumber       *string  `json:"phoneNumber"`
	Department        *string  `json:"department"`
	DamageDescription *string  `json:"damageDescription"`
	PurchasePrice     *float64 `json:"purchasePrice"`
	PurchaseDate      *string  `json:"purchaseDate"`
	Client            *string  `json:"client"`
}

// UpdateEquipmentInput represents a partial equipment update
type UpdateEquipmentInput struct {
	Category          Field[string]  `json:"category"`
	Status            Field[string]  `json:"status"`
	Model             Field[string]  `json:"model"`
	SerialNumber      Field[string]  `json:"serialNumber"`
	WarrantyInfo      Field[string]  `json:"warrantyInfo"`
	Location          Field[string]  `json:"location"`
	Comment           Field[string]  `json:"comment"`
	AssigneeName      Field[string]  `json:"assigneeName"`
	Position          Field[string]  `json:"position"`
	EmployeeEmail     Field[string]  `json:"employeeEmail"`
	PhoneNumber       Field[string]  `json:"phoneNumber"`
	Department        Field[string]  `json:"department"`
	DamageDescription Field[string]  `json:"damageDescription"`
	PurchasePrice     Field[float64] `json:"purchasePrice"`
	PurchaseDate      Field[string]  `json:"purchaseDate"`
	Client            Field[string]  `json:"client"`
}

// List returns non-deleted equipment, newest first
func (s *EquipmentService) List(ctx context.Context) ([]*models.Equipment, error) {
	return s.repo.ListActive(ctx)
}

// ListRemoved returns non-deleted equipment in Removed status
func (s *EquipmentService) ListRemoved(ctx context.Context) ([]*models.Equipment, error) {
	return s.repo.ListRemoved(ctx)
}

// GetByID returns one non-deleted equipment
func (s *EquipmentService) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidEquipmentID
	}
	equipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEquipmentNotFound
		}
		return nil, err
	}
	return equipment, nil
}

// CountByCategory counts non-deleted equipment in a category
func (s *EquipmentService) CountByCategory(ctx context.Context, category string) (int64, error) {
	return s.repo.CountByCategory(ctx, category)
}

// Summary returns dashboard counters
func (s *EquipmentService) Summary(ctx context.Context) (*models.EquipmentSummary, error) {
	return s.repo.Summary(ctx)
}

// Create validates input, allocates an asset tag and stores the equipment
func (s *EquipmentService) Create(ctx context.Context, input *CreateEquipmentInput) (*models.Equipment, error) {
	// 1. Validate enums
	if input.Category == nil {
		return nil, domain.ErrCategoryRequired
	}
	category := strings.TrimSpace(*input.Category)

	status := domain.StatusInStock
	if input.Status != nil {
		parsed, err := domain.ParseEquipmentStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	var client *domain.Client
	if input.Client != nil {
		parsed, err := domain.ParseClient(*input.Client)
		if err != nil {
			return nil, err
		}
		client = &parsed
	}

	if input.EmployeeEmail != nil && *input.EmployeeEmail != "" {
		if err := validateEmail(*input.EmployeeEmail); err != nil {
			return nil, err
		}
	}

	// 2. Check for duplicate serial number
	serial := blankToNil(input.SerialNumber)
	if serial != nil {
		exists, err := s.repo.SerialExists(ctx, *serial, "")
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrSerialExists
		}
	}

	// 3. Build record
	equipment := &models.Equipment{
		Category:      category,
		Status:        status,
		Model:         input.Model,
		SerialNumber:  serial,
		WarrantyInfo:  parseOptionalDate(input.WarrantyInfo, "warrantyInfo"),
		Location:      input.Location,
		Comment:       input.Comment,
		AssigneeName:  input.AssigneeName,
		Position:      input.Position,
		EmployeeEmail: input.EmployeeEmail,
		PhoneNumber:   input.PhoneNumber,
		Department:    input.Department,
		PurchaseDate:  parseOptionalDate(input.PurchaseDate, "purchaseDate"),
		Client:        client,
	}
	if input.PurchasePrice != nil {
		equipment.PurchasePrice = *input.PurchasePrice
	}
	if status == domain.StatusDamaged {
		equipment.DamageDescription = input.DamageDescription
	}

	// 4. Persist with a fresh asset tag; each retry shifts the time suffix
	err := s.repo.Create(ctx, equipment, func(seq int64, attempt int) string {
		return BuildAssetTag(category, seq, s.now().Add(time.Duration(attempt)*time.Microsecond))
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateSerial):
			return nil, domain.ErrSerialExists
		case errors.Is(err, repositories.ErrDuplicateAssetTag):
			return nil, domain.ErrAssetTagConflict
		}
		return nil, err
	}

	log.Printf("✅ Equipment created: %s (%s)", equipment.AssetID, equipment.Category)
	return equipment, nil
}

// Update merges supplied fields into an equipment and returns the stored record.
// When the change assigns the asset to someone new, an acknowledgement is queued.
func (s *EquipmentService) Update(ctx context.Context, id string, input *UpdateEquipmentInput) (*models.Equipment, error) {
	// 1. Validate id and load current state
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidEquipmentID
	}
	prev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEquipmentNotFound
		}
		return nil, err
	}

	// 2. Build column updates
	updates, err := buildEquipmentUpdates(input)
	if err != nil {
		return nil, err
	}

	// 3. damageDescription only survives on Damaged equipment
	status := prev.Status
	if input.Status.Present() {
		status = domain.EquipmentStatus(input.Status.Value)
	}
	if status != domain.StatusDamaged {
		updates["damage_description"] = nil
	}

	// 4. Serial must stay unique
	if serial, ok := updates["serial_number"].(string); ok {
		if prev.SerialNumber == nil || *prev.SerialNumber != serial {
			exists, err := s.repo.SerialExists(ctx, serial, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrSerialExists
			}
		}
	}

	// 5. Persist
	updates["updated_at"] = s.now()
	if err := s.repo.Update(ctx, id, updates); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domain.ErrEquipmentNotFound
		case errors.Is(err, repositories.ErrDuplicateSerial):
			return nil, domain.ErrSerialExists
		default:
			return nil, err
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEquipmentNotFound
		}
		return nil, err
	}

	// 6. Hand new assignments to the notifier; delivery never blocks the response
	if IsNewAssignment(prev, input) && s.notifier != nil {
		s.notifier.Enqueue(ctx, updated)
	}

	return updated, nil
}

// SoftDelete marks an equipment as deleted
func (s *EquipmentService) SoftDelete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidEquipmentID
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrEquipmentNotFound
		}
		return err
	}

	log.Printf("🗑️ Equipment marked as deleted: %s", id)
	return nil
}

func buildEquipmentUpdates(in *UpdateEquipmentInput) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if in.Category.Set {
		if in.Category.Null {
			return nil, domain.ErrCategoryRequired
		}
		updates["category"] = strings.TrimSpace(in.Category.Value)
	}
	if in.Status.Set {
		if in.Status.Null {
			return nil, fmt.Errorf("%w: status cannot be null", domain.ErrBadRequest)
		}
		status, err := domain.ParseEquipmentStatus(in.Status.Value)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
	}
	if in.Client.Set {
		if in.Client.Null {
			updates["client"] = nil
		} else {
			client, err := domain.ParseClient(in.Client.Value)
			if err != nil {
				return nil, err
			}
			updates["client"] = client
		}
	}
	if in.EmployeeEmail.Present() && in.EmployeeEmail.Value != "" {
		if err := validateEmail(in.EmployeeEmail.Value); err != nil {
			return nil, err
		}
	}
	if in.SerialNumber.Set {
		if in.SerialNumber.Null || strings.TrimSpace(in.SerialNumber.Value) == "" {
			updates["serial_number"] = nil
		} else {
			updates["serial_number"] = strings.TrimSpace(in.SerialNumber.Value)
		}
	}
	if in.PurchasePrice.Set {
		updates["purchase_price"] = in.PurchasePrice.Value
	}

	setText(updates, "model", in.Model)
	setText(updates, "location", in.Location)
	setText(updates, "comment", in.Comment)
	setText(updates, "assignee_name", in.AssigneeName)
	setText(updates, "position", in.Position)
	setText(updates, "employee_email", in.EmployeeEmail)
	setText(updates, "phone_number", in.PhoneNumber)
	setText(updates, "department", in.Department)
	setText(updates, "damage_description", in.DamageDescription)

	setDate(updates, "warranty_info", "warrantyInfo", in.WarrantyInfo)
	setDate(updates, "purchase_date", "purchaseDate", in.PurchaseDate)

	return updates, nil
}

func setText(updates map[string]interface{}, column string, f Field[string]) {
	if !f.Set {
		return
	}
	if f.Null {
		updates[column] = nil
		return
	}
	updates[column] = f.Value
}

func setDate(updates map[string]interface{}, column, name string, f Field[string]) {
	if !f.Set {
		return
	}
	if f.Null {
		updates[column] = nil
		return
	}
	if t := parseOptionalDate(&f.Value, name); t != nil {
		updates[column] = *t
		return
	}
	updates[column] = nil
}

// BuildAssetTag formats PREFIX-SEQ-SUFFIX: the first three letters of the
// category upper-cased ("OTH" when empty), a zero-padded sequence and a
// five-digit time suffix.
func BuildAssetTag(category string, seq int64, now time.Time) string {
	prefix := "OTH"
	if category = strings.TrimSpace(category); category != "" {
		runes := []rune(category)
		if len(runes) > 3 {
			runes = runes[:3]
		}
		prefix = strings.ToUpper(string(runes))
	}
	return fmt.Sprintf("%s-%03d-%05d", prefix, seq, now.UnixMicro()%100000)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339, ISO-8601 date-time without zone, or date-only input
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseOptionalDate(value *string, name string) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	t, ok := ParseDate(*value)
	if !ok {
		log.Printf("⚠️ Ignoring unparseable %s %q", name, truncate(*value, 40))
		return nil
	}
	return &t
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
