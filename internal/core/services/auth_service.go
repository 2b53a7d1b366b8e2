package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/config"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/jwt"
	"it-asset-management/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token string             `json:"token"`
	User  models.SessionUser `json:"user"`
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Issue session token
	token, err := jwt.GenerateSessionToken(user.ID, user.Email, user.Role.String(), s.cfg.JWT.Secret, s.cfg.JWT.SessionTTL)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)

	return &LoginResponse{
		Token: token,
		User:  user.ToSessionUser(),
	}, nil
}

// ParseSession validates a session token and returns its identity
func ParseSession(token, secret string) (*domain.SessionClaims, error) {
	claims, err := jwt.ValidateSessionToken(token, secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.SessionClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
