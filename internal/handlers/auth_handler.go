package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/validation"
)

// AuthHandler handles HTTP requests for the shopper session.
type AuthHandler struct {
	auth      *store.Auth
	validator *validation.Validator
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *store.Auth, validator *validation.Validator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, validator: validator, logger: logger}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/session", h.HandleGetSession)
}

// LoginRequest represents the request body for login. Role, when set, must match the account.
type LoginRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=admin customer"`
}

// HandleLogin checks the credentials and issues the session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validator.Check(req, "Validation failed"); err != nil {
		return respondError(c, h.logger, err, "Could not log in")
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password, req.Role)
	if err != nil {
		return respondError(c, h.logger, err, store.ErrMsgLoginFailed)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   h.auth.Token(),
		"user":    session,
	})
}

// HandleLogout ends the session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.auth.Logout()
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleGetSession reports the login state.
func (h *AuthHandler) HandleGetSession(c *fiber.Ctx) error {
	body := fiber.Map{
		"authenticated": h.auth.IsAuthenticated(),
		"state":         h.auth.State().String(),
		"user":          h.auth.Session(),
	}
	if msg := h.auth.Error(); msg != "" {
		body["error"] = msg
	}
	return c.JSON(body)
}
