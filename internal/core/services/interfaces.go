package services

import (
	"context"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/pkg/mailer"
)

// Mailer delivers e-mail; implemented by mailer.Mailer
type Mailer interface {
	Enabled() bool
	DefaultRecipient() string
	Send(ctx context.Context, msg mailer.Message) error
}

// AssignmentNotifier is told about equipment that was just handed to an employee
type AssignmentNotifier interface {
	Enqueue(ctx context.Context, equipment *models.Equipment)
}

// Handler-facing service contracts

// AuthUseCase defines login
type AuthUseCase interface {
	Login(ctx context.Context, input *LoginInput) (*LoginResponse, error)
}

// UserUseCase defines user management
type UserUseCase interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, input *CreateUserInput) (*models.User, error)
	Update(ctx context.Context, id string, input *UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, actorID, id string) error
}

// EquipmentUseCase defines the asset repository operations
type EquipmentUseCase interface {
	List(ctx context.Context) ([]*models.Equipment, error)
	ListRemoved(ctx context.Context) ([]*models.Equipment, error)
	GetByID(ctx context.Context, id string) (*models.Equipment, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	Summary(ctx context.Context) (*models.EquipmentSummary, error)
	Create(ctx context.Context, input *CreateEquipmentInput) (*models.Equipment, error)
	Update(ctx context.Context, id string, input *UpdateEquipmentInput) (*models.Equipment, error)
	SoftDelete(ctx context.Context, id string) error
}

// PasswordResetUseCase defines the reset flow
type PasswordResetUseCase interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
}

// MailUseCase defines the admin e-mail utilities
type MailUseCase interface {
	SendCustom(ctx context.Context, input *SendEmailInput) error
	SendTest(ctx context.Context) error
}

var (
	_ AuthUseCase          = (*AuthService)(nil)
	_ UserUseCase          = (*UserService)(nil)
	_ EquipmentUseCase     = (*EquipmentService)(nil)
	_ PasswordResetUseCase = (*PasswordResetService)(nil)
	_ MailUseCase          = (*MailService)(nil)
	_ AssignmentNotifier   = (*NotificationService)(nil)
)
