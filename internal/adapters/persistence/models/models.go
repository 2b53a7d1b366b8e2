package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"it-asset-management/internal/core/domain"
)

// ============================================================
// Users
// ============================================================

// User represents users table
type User struct {
	ID        string      `gorm:"primaryKey;size:36" json:"_id"`
	Name      string      `gorm:"size:100;not null" json:"name"`
	Email     string      `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password  string      `gorm:"size:255;not null" json:"-"`
	Role      domain.Role `gorm:"type:varchar(10);not null" json:"role"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// SessionUser is the user summary returned on login
type SessionUser struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func (u *User) ToSessionUser() SessionUser {
	return SessionUser{ID: u.ID, Email: u.Email, Role: u.Role}
}

// ============================================================
// Equipment
// ============================================================

// Equipment represents equipment table
type Equipment struct {
	ID                string                 `gorm:"primaryKey;size:36" json:"_id"`
	AssetID           string                 `gorm:"column:asset_id;uniqueIndex;size:32;not null" json:"assetId"`
	Category          string                 `gorm:"size:100;not null;index" json:"category"`
	Status            domain.EquipmentStatus `gorm:"size:20;not null;index" json:"status"`
	Model             *string                `gorm:"size:255" json:"model"`
	SerialNumber      *string                `gorm:"uniqueIndex;size:191" json:"serialNumber"`
	WarrantyInfo      *time.Time             `json:"warrantyInfo"`
	Location          *string                `gorm:"size:255" json:"location"`
	Comment           *string                `gorm:"type:text" json:"comment"`
	AssigneeName      *string                `gorm:"size:255" json:"assigneeName"`
	Position          *string                `gorm:"size:255" json:"position"`
	EmployeeEmail     *string                `gorm:"size:255" json:"employeeEmail"`
	PhoneNumber       *string                `gorm:"size:50" json:"phoneNumber"`
	Department        *string                `gorm:"size:255" json:"department"`
	DamageDescription *string                `gorm:"type:text" json:"damageDescription"`
	PurchasePrice     float64                `gorm:"not null" json:"purchasePrice"`
	PurchaseDate      *time.Time             `json:"purchaseDate"`
	Client            *domain.Client         `gorm:"size:20" json:"client"`
	IsDeleted         bool                   `gorm:"not null;index" json:"isDeleted"`
	CreatedAt         time.Time              `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time              `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// BeforeCreate assigns a UUID when none is set
func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// CategorySequence is the per-category asset tag counter
type CategorySequence struct {
	Category  string    `gorm:"primaryKey;size:100"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CategorySequence) TableName() string {
	return "category_sequences"
}

// EquipmentSummary holds status counts for the dashboard
type EquipmentSummary struct {
	TotalAssets int64 `gorm:"column:total_assets" json:"totalAssets"`
	InUse       int64 `gorm:"column:in_use" json:"inUse"`
	InStock     int64 `gorm:"column:in_stock" json:"inStock"`
	Damaged     int64 `gorm:"column:damaged" json:"damaged"`
	EWaste      int64 `gorm:"column:e_waste" json:"eWaste"`
	Removed     int64 `gorm:"column:removed" json:"removed"`
}

// ============================================================
// Notifications
// ============================================================

// NotificationOutbox is a pending assignment e-mail.
// Asset and assignee fields are a snapshot taken when the assignment happened.
type NotificationOutbox struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	EquipmentID   string     `gorm:"size:36;not null;index" json:"equipment_id"`
	AssetID       string     `gorm:"size:32" json:"asset_id"`
	Category      string     `gorm:"size:100" json:"category"`
	Model         string     `gorm:"size:255" json:"model"`
	SerialNumber  string     `gorm:"size:191" json:"serial_number"`
	Status        string     `gorm:"size:20" json:"equipment_status"`
	Location      string     `gorm:"size:255" json:"location"`
	Recipient     string     `gorm:"size:255;not null" json:"recipient"`
	AssigneeName  string     `gorm:"size:255" json:"assignee_name"`
	Position      string     `gorm:"size:255" json:"position"`
	Department    string     `gorm:"size:255" json:"department"`
	PhoneNumber   string     `gorm:"size:50" json:"phone_number"`
	State         string     `gorm:"size:20;not null;index:idx_outbox_due,priority:1" json:"state"`
	Attempts      int        `gorm:"not null" json:"attempts"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time  `gorm:"not null;index:idx_outbox_due,priority:2" json:"next_attempt_at"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NotificationOutbox) TableName() string {
	return "notification_outbox"
}

// BeforeCreate assigns a UUID when none is set
func (n *NotificationOutbox) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// AutoMigrate creates or updates every table this service owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Equipment{},
		&CategorySequence{},
		&NotificationOutbox{},
	)
}
