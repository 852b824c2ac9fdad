package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/services"
	"storefront/internal/store"
	"storefront/internal/validation"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	cart      *store.Cart
	products  *services.ProductService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *store.Cart, products *services.ProductService, validator *validation.Validator, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, products: products, validator: validator, logger: logger}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// CartResponse is the cart as the API shows it.
type CartResponse struct {
	Items     []models.CartLine `json:"items"`
	ItemCount int               `json:"item_count"`
	Summary   pricing.Summary   `json:"summary"`
	Display   pricing.Display   `json:"display"`
}

func (h *CartHandler) snapshot() CartResponse {
	lines := h.cart.Lines()
	summary := pricing.Calculate(lines)
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return CartResponse{Items: lines, ItemCount: count, Summary: summary, Display: summary.Display()}
}

// HandleGetCart returns the cart lines and totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(h.snapshot())
}

// AddItemRequest adds quantity units of a product; quantity defaults to 1.
type AddItemRequest struct {
	ProductID int  `json:"productId" validate:"required,gt=0"`
	Quantity  *int `json:"quantity" validate:"omitempty,min=1"`
}

// HandleAddItem puts a catalog product into the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validator.Check(req, "Invalid cart item"); err != nil {
		return respondError(c, h.logger, err, "Could not add item")
	}
	product, err := h.products.GetProductByID(req.ProductID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not add item")
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	h.cart.Add(*product, quantity)
	return c.Status(fiber.StatusCreated).JSON(h.snapshot())
}

// UpdateItemRequest sets the quantity of a line. Zero or less removes it.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// HandleUpdateItem changes the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	id, err := intParam(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validator.Check(req, "Quantity is required"); err != nil {
		return respondError(c, h.logger, err, "Could not update item")
	}
	h.cart.UpdateQuantity(id, *req.Quantity)
	return c.JSON(h.snapshot())
}

// HandleRemoveItem deletes a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	id, err := intParam(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	h.cart.Remove(id)
	return c.JSON(h.snapshot())
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	h.cart.Clear()
	return c.JSON(h.snapshot())
}
