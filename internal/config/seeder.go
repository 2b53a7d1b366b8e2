package config

import (
	"context"
	"errors"
	"log"

	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	users repositories.UserRepository
	cfg   *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(users repositories.UserRepository, cfg *Config) *Seeder {
	return &Seeder{users: users, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(ctx); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the default admin account when its email is not registered
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	_, err := s.users.GetByEmail(ctx, s.cfg.Seed.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := password.HashWithCost(s.cfg.Seed.AdminPassword, s.cfg.JWT.BcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Admin",
		Email:    s.cfg.Seed.AdminEmail,
		Password: hashedPassword,
		Role:     domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}
