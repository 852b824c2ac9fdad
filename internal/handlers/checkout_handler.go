package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/services"
)

// CheckoutHandler handles HTTP requests for placing orders.
type CheckoutHandler struct {
	service *services.CheckoutService
	logger  *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, logger: logger}
}

// RegisterRoutes registers the checkout route with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout places an order for the current cart.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var form services.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		return invalidBody(c, err)
	}

	receipt, err := h.service.PlaceOrder(c.UserContext(), form)
	if err != nil {
		return respondError(c, h.logger, err, "Could not place order")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Order Placed Successfully",
		"order":    receipt.Order,
		"summary":  receipt.Summary,
		"display":  receipt.Summary.Display(),
		"redirect": receipt.Redirect,
	})
}
