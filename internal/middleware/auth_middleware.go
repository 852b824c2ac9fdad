package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/store"
)

// LoginRoute is where unauthenticated callers are sent.
const LoginRoute = "/login"

const sessionLocal = "session"

// AuthRequired is a Fiber middleware that admits requests carrying the token of the active session.
func AuthRequired(auth *store.Auth, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'", "")
		}

		session, err := auth.Verify(parts[1])
		if err != nil {
			logger.Debug("session token rejected", zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "Invalid or expired token", err.Error())
		}

		c.Locals(sessionLocal, session)
		return c.Next()
	}
}

// RequireRole admits only sessions with role. It must run after AuthRequired.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := SessionFrom(c)
		if session == nil {
			return unauthorized(c, "Authentication required", "")
		}
		if session.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
				"error":   "role " + string(role) + " required",
			})
		}
		return c.Next()
	}
}

// SessionFrom returns the session stored by AuthRequired, or nil.
func SessionFrom(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionLocal).(*models.Session)
	return session
}

func unauthorized(c *fiber.Ctx, message, detail string) error {
	body := fiber.Map{
		"message":  message,
		"redirect": LoginRoute,
	}
	if detail != "" {
		body["error"] = detail
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
