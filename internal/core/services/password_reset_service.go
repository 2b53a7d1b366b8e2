package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"log"
	"net/url"
	"strings"
	"time"

	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/config"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/mailer"
	"it-asset-management/internal/pkg/password"

	"gorm.io/gorm"
)

// PasswordResetService issues and redeems e-mailed reset tokens.
// Only the SHA-256 hash of a token is stored.
type PasswordResetService struct {
	userRepo repositories.UserRepository
	tokens   repositories.ResetTokenStore
	mailer   Mailer
	cfg      *config.Config
	now      func() time.Time
	newToken func() (string, error)
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(userRepo repositories.UserRepository, tokens repositories.ResetTokenStore, m Mailer, cfg *config.Config) *PasswordResetService {
	return &PasswordResetService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   m,
		cfg:      cfg,
		now:      time.Now,
		newToken: generateResetToken,
	}
}

// ResetPasswordInput represents reset password input
type ResetPasswordInput struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// RequestReset issues a token for email and mails the reset link
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: Email is required", domain.ErrBadRequest)
	}

	// 1. The account must exist
	if _, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNoAccountForEmail
		}
		return err
	}

	// 2. Issue token
	token, err := s.newToken()
	if err != nil {
		return err
	}
	hash := password.HashToken(token)
	rec := repositories.ResetTokenRecord{
		Email:     email,
		ExpiresAt: s.now().Add(s.cfg.Redis.ResetTokenTTL),
	}
	if err := s.tokens.Save(ctx, hash, rec); err != nil {
		return err
	}

	// 3. Mail the link; an undelivered token is withdrawn
	link := s.resetLink(token, email)
	err = s.mailer.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Password Reset Request",
		HTML:    resetBody(link),
	})
	if err != nil {
		log.Printf("❌ Failed to send reset email to %s: %v", email, err)
		if delErr := s.tokens.Delete(ctx, hash); delErr != nil {
			log.Printf("⚠️ Failed to withdraw reset token: %v", delErr)
		}
		return domain.ErrResetEmailNotSent
	}

	log.Printf("📧 Password reset email sent to %s", email)
	return nil
}

// ResetPassword redeems a token and stores the new password hash
func (s *PasswordResetService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	// 1. Validate input
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Token == "" || input.NewPassword == "" {
		return fmt.Errorf("%w: Email, token and new password are required", domain.ErrBadRequest)
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.ErrPasswordTooShort
	}

	// 2. Check the token
	hash := password.HashToken(input.Token)
	rec, err := s.tokens.Get(ctx, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrResetTokenNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}
	if !s.now().Before(rec.ExpiresAt) {
		if err := s.tokens.Delete(ctx, hash); err != nil {
			log.Printf("⚠️ Failed to delete expired reset token: %v", err)
		}
		return domain.ErrResetTokenExpired
	}
	if rec.Email != email {
		return domain.ErrResetTokenForeign
	}

	// 3. The account must still exist
	if _, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	hashed, err := password.HashWithCost(input.NewPassword, s.cfg.JWT.BcryptCost)
	if err != nil {
		return err
	}

	// 4. Consume; only one redemption wins
	consumed, err := s.tokens.Consume(ctx, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrResetTokenNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}

	// 5. Persist; a failed write hands the token back so the link can be retried
	if err := s.userRepo.UpdatePasswordByEmail(ctx, email, hashed); err != nil {
		if restoreErr := s.tokens.Save(context.WithoutCancel(ctx), hash, *consumed); restoreErr != nil {
			log.Printf("⚠️ Failed to restore reset token for %s: %v", email, restoreErr)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	log.Printf("✅ Password reset for %s", email)
	return nil
}

// SweepExpired drops expired tokens from stores that do not expire them on their own
func (s *PasswordResetService) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.tokens.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("🗑️ Purged %d expired reset tokens", n)
	}
	return n, nil
}

func (s *PasswordResetService) resetLink(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return s.cfg.APIBaseURL + "/reset-password?" + q.Encode()
}

func resetBody(link string) string {
	return fmt.Sprintf(`<p>You requested a password reset.</p>
<p>Click the link below to set a new password. The link expires in one hour.</p>
<p><a href="%[1]s">%[1]s</a></p>
<p>If you did not request this, you can ignore this e-mail.</p>`, html.EscapeString(link))
}

func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
