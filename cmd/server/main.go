package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"it-asset-management/internal/adapters/http/handlers"
	"it-asset-management/internal/adapters/http/middleware"
	"it-asset-management/internal/adapters/http/routes"
	"it-asset-management/internal/adapters/persistence/models"
	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/config"
	"it-asset-management/internal/core/services"
	"it-asset-management/internal/pkg/mailer"

	"github.com/gofiber/fiber/v2"

	_ "it-asset-management/docs" // Swagger docs
)

// @title IT Asset Management API
// @version 1.0
// @description Inventory, user management and assignment notifications for IT assets.

// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-auth-token
// @description Session JWT. "Authorization: Bearer <token>" is accepted as well.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	equipmentRepo := repositories.NewEquipmentRepository(db)
	outboxRepo := repositories.NewOutboxRepository(db)

	// Seed default admin
	if err := config.NewSeeder(userRepo, cfg).Run(context.Background()); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Reset tokens: Redis when configured, otherwise process memory
	tokenStore := repositories.NewMemoryResetTokenStore()
	if cfg.RedisEnabled() {
		client, err := config.ConnectRedis(cfg)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, reset tokens kept in memory: %v", err)
		} else {
			tokenStore = repositories.NewRedisResetTokenStore(client)
		}
	}

	// Outgoing mail
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if !mail.Enabled() {
		log.Println("⚠️ SMTP credentials not configured, e-mail delivery disabled")
	}

	// Initialize services
	notifier := services.NewNotificationService(outboxRepo, mail, cfg.Notify)
	resetService := services.NewPasswordResetService(userRepo, tokenStore, mail, cfg)
	svc := &routes.Services{
		Auth:          services.NewAuthService(userRepo, cfg),
		PasswordReset: resetService,
		Users:         services.NewUserService(userRepo, cfg),
		Equipment:     services.NewEquipmentService(equipmentRepo, notifier),
		Mail:          services.NewMailService(mail),
		HealthChecks: []handlers.HealthCheck{
			{Name: "database", Check: config.HealthCheck},
			{Name: "redis", Check: config.RedisHealthCheck},
		},
	}

	// Background work
	notifier.Start()
	cronService := services.NewCronService(notifier, resetService, cfg.IsDev())
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "IT Asset Management API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, svc, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go gracefulShutdown(app, cronService, notifier, done)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	<-done
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, cronService *services.CronService, notifier *services.NotificationService, done chan<- struct{}) {
	defer close(done)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cronService.Stop(ctx)
	notifier.Stop()

	if err := config.CloseRedis(); err != nil {
		log.Printf("❌ Error closing redis: %v", err)
	}
	if err := config.CloseDatabase(); err != nil {
		log.Printf("❌ Error closing database: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
