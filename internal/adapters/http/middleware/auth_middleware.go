package middleware

import (
	"strings"

	"it-asset-management/internal/config"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/core/services"
	"it-asset-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middlewares
const (
	LocalsUserID = "userID"
	LocalsEmail  = "email"
	LocalsRole   = "role"
)

// TokenHeader is the session header used by the web client
const TokenHeader = "x-auth-token"

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Read token from x-auth-token, then Authorization: Bearer
		token := extractToken(c)
		if token == "" {
			return response.FromError(c, domain.ErrTokenMissing)
		}

		// 2. Validate token
		claims, err := services.ParseSession(token, cfg.JWT.Secret)
		if err != nil {
			return response.FromError(c, err)
		}

		// 3. Set user info in context
		setClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth lets anonymous requests through but rejects a token that is present and invalid
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Next()
		}

		claims, err := services.ParseSession(token, cfg.JWT.Secret)
		if err != nil {
			return response.FromError(c, err)
		}

		setClaims(c, claims)
		return c.Next()
	}
}

// RequireRole creates role-based authorization middleware
func RequireRole(roles ...domain.Role) fiber.Handler {
	return requireRole(domain.ErrInsufficientRole, roles...)
}

// AdminOnly middleware allows only the Admin role
func AdminOnly() fiber.Handler {
	return requireRole(domain.ErrAdminRequired, domain.RoleAdmin)
}

// EditorOrAdmin middleware allows Editor or Admin roles
func EditorOrAdmin() fiber.Handler {
	return RequireRole(domain.RoleEditor, domain.RoleAdmin)
}

func requireRole(denied error, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalsRole).(domain.Role)
		if !ok {
			return response.FromError(c, domain.ErrTokenMissing)
		}
		if !role.In(roles...) {
			return response.FromError(c, denied)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id, or "" for anonymous requests
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsUserID).(string)
	return id
}

func extractToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(TokenHeader)); token != "" {
		return token
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func setClaims(c *fiber.Ctx, claims *domain.SessionClaims) {
	c.Locals(LocalsUserID, claims.UserID)
	c.Locals(LocalsEmail, claims.Email)
	c.Locals(LocalsRole, claims.Role)
}
