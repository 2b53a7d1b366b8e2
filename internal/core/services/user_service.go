package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"unicode/utf8"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/config"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserInput represents a partial user update
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// GetByID returns one user
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create registers a new user; role defaults to Viewer
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	// 1. Validate input
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrPasswordTooShort
	}
	role := domain.RoleViewer
	if input.Role != "" {
		parsed, err := domain.ParseRole(input.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	// 2. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 3. Hash password
	hashedPassword, err := password.HashWithCost(input.Password, s.cfg.JWT.BcryptCost)
	if err != nil {
		return nil, err
	}

	// 4. Create user
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
	return user, nil
}

// Update applies a partial update and returns the stored user
func (s *UserService) Update(ctx context.Context, id string, input *UpdateUserInput) (*models.User, error) {
	// 1. Load user
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. Merge fields
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		taken, err := s.userRepo.EmailTakenByOther(ctx, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrEmailInUse
		}
		user.Email = email
	}
	// An empty password leaves the current one untouched
	if input.Password != nil && *input.Password != "" {
		if !password.ValidatePassword(*input.Password) {
			return nil, domain.ErrPasswordTooShort
		}
		hashedPassword, err := password.HashWithCost(*input.Password, s.cfg.JWT.BcryptCost)
		if err != nil {
			return nil, err
		}
		user.Password = hashedPassword
	}

	// 3. Save
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailInUse
		}
		return nil, err
	}

	log.Printf("✅ User updated: %s", user.Email)
	return user, nil
}

// Delete removes a user. Deleting your own account is always forbidden.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.ErrCannotDeleteSelf
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidUserID
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	log.Printf("🗑️ User deleted: %s (by %s)", id, actorID)
	return nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return fmt.Errorf("%w: Name must be between 2 and 100 characters", domain.ErrBadRequest)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: Invalid email address", domain.ErrBadRequest)
	}
	return nil
}
