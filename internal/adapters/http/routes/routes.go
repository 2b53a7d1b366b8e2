package routes

import (
	"it-asset-management/internal/adapters/http/handlers"
	"it-asset-management/internal/adapters/http/middleware"
	"it-asset-management/internal/config"
	"it-asset-management/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Services holds the use cases the HTTP layer depends on
type Services struct {
	Auth          services.AuthUseCase
	PasswordReset services.PasswordResetUseCase
	Users         services.UserUseCase
	Equipment     services.EquipmentUseCase
	Mail          services.MailUseCase
	HealthChecks  []handlers.HealthCheck
}

// Setup configures all routes for the application
func Setup(app *fiber.App, svc *Services, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, svc.HealthChecks...)
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.PasswordReset)
	userHandler := handlers.NewUserHandler(svc.Users)
	equipmentHandler := handlers.NewEquipmentHandler(svc.Equipment)
	emailHandler := handlers.NewEmailHandler(svc.Mail)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Admin e-mail utilities
	app.Post("/send-email", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), emailHandler.SendEmail)
	app.Get("/test-email", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), emailHandler.TestEmail)

	api := app.Group("/api")
	setupAuthRoutes(api, authHandler)
	setupUserRoutes(api.Group("/users"), userHandler, cfg)
	setupEquipmentRoutes(api.Group("/equipment"), equipmentHandler, cfg)
}

// setupAuthRoutes configures login and password reset routes (public)
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler) {
	router.Post("/users/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/forgot-password", middleware.StrictRateLimiter(), middleware.NoCacheHeaders(), handler.ForgotPassword)
	router.Post("/reset-password", middleware.StrictRateLimiter(), middleware.NoCacheHeaders(), handler.ResetPassword)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler, cfg *config.Config) {
	admin := []fiber.Handler{middleware.AuthMiddleware(cfg), middleware.AdminOnly(), middleware.NoCacheHeaders()}
	with := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), h)
	}

	router.Get("/", with(handler.ListUsers)...)
	router.Post("/create", with(handler.CreateUser)...)
	router.Get("/:id", with(handler.GetUser)...)
	router.Put("/:id", with(handler.UpdateUser)...)
	router.Delete("/:id", with(handler.DeleteUser)...)
}

// setupEquipmentRoutes configures equipment routes
func setupEquipmentRoutes(router fiber.Router, handler *handlers.EquipmentHandler, cfg *config.Config) {
	// Reads are public; a token that is sent must still be valid
	router.Get("/", middleware.OptionalAuth(cfg), handler.List)
	router.Get("/summary", middleware.OptionalAuth(cfg), handler.Summary)
	router.Get("/count/:category", middleware.OptionalAuth(cfg), handler.CountByCategory)
	router.Get("/removed", middleware.OptionalAuth(cfg), handler.Removed)
	router.Get("/:id", middleware.OptionalAuth(cfg), handler.Get)

	// Writes
	router.Post("/", middleware.AuthMiddleware(cfg), middleware.EditorOrAdmin(), handler.Create)
	router.Put("/:id", middleware.AuthMiddleware(cfg), middleware.EditorOrAdmin(), handler.Update)
	router.Delete("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Delete)
}
