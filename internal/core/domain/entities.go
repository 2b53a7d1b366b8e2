package domain

import (
	"database/sql/driver"
	"fmt"
)

// Role represents user role in the system.
// The zero value is not a valid role; use ParseRole to build one from input.
type Role uint8

const (
	roleUnknown Role = iota
	RoleViewer
	RoleEditor
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleViewer: "Viewer",
	RoleEditor: "Editor",
	RoleAdmin:  "Admin",
}

// ParseRole converts a role name into a Role
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return roleUnknown, fmt.Errorf("%w: invalid role %q (must be Admin, Editor or Viewer)", ErrBadRequest, s)
}

// Valid reports whether r is one of the declared roles
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// In reports whether r is one of the given roles
func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role value %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role by name
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role value %d", uint8(r))
	}
	return r.String(), nil
}

// Scan reads a role name from the database
func (r *Role) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}

// EquipmentStatus is the lifecycle status of an asset
type EquipmentStatus string

const (
	StatusInUse   EquipmentStatus = "In Use"
	StatusInStock EquipmentStatus = "In Stock"
	StatusDamaged EquipmentStatus = "Damaged"
	StatusEWaste  EquipmentStatus = "E-Waste"
	StatusRemoved EquipmentStatus = "Removed"
)

// ParseEquipmentStatus validates a status string
func ParseEquipmentStatus(s string) (EquipmentStatus, error) {
	switch st := EquipmentStatus(s); st {
	case StatusInUse, StatusInStock, StatusDamaged, StatusEWaste, StatusRemoved:
		return st, nil
	}
	return "", fmt.Errorf("%w: invalid status %q", ErrBadRequest, s)
}

// Client is the customer an asset is tagged to
type Client string

const (
	ClientDeloitte  Client = "Deloitte"
	ClientLionguard Client = "Lionguard"
	ClientCognizant Client = "Cognizant"
)

// ParseClient validates a client tag
func ParseClient(s string) (Client, error) {
	switch c := Client(s); c {
	case ClientDeloitte, ClientLionguard, ClientCognizant:
		return c, nil
	}
	return "", fmt.Errorf("%w: invalid client %q", ErrBadRequest, s)
}

// SessionClaims is the identity carried by a session token
type SessionClaims struct {
	UserID string
	Email  string
	Role   Role
}

// Outbox statuses for assignment notifications
const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxSent       = "sent"
	OutboxDead       = "dead"
)
