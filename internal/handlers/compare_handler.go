package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/store"
	"storefront/internal/validation"
)

// CompareHandler handles HTTP requests for the compare list.
type CompareHandler struct {
	compare   *store.Compare
	products  *services.ProductService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCompareHandler creates a new CompareHandler.
func NewCompareHandler(compare *store.Compare, products *services.ProductService, validator *validation.Validator, logger *zap.Logger) *CompareHandler {
	return &CompareHandler{compare: compare, products: products, validator: validator, logger: logger}
}

// RegisterRoutes registers the compare routes with the Fiber app.
func (h *CompareHandler) RegisterRoutes(router fiber.Router) {
	compareRoutes := router.Group("/compare")
	compareRoutes.Get("/", h.HandleGetCompare)
	compareRoutes.Post("/", h.HandleAddToCompare)
	compareRoutes.Delete("/", h.HandleClearCompare)
	compareRoutes.Get("/:productId", h.HandleIsInCompare)
	compareRoutes.Delete("/:productId", h.HandleRemoveFromCompare)
}

type compareResponse struct {
	Items []models.CompareEntry `json:"items"`
	Count int                   `json:"count"`
	Limit int                   `json:"limit"`
}

func (h *CompareHandler) snapshot() compareResponse {
	entries := h.compare.Entries()
	return compareResponse{Items: entries, Count: len(entries), Limit: store.MaxCompare}
}

// HandleGetCompare returns the compared products in insertion order.
func (h *CompareHandler) HandleGetCompare(c *fiber.Ctx) error {
	return c.JSON(h.snapshot())
}

// AddToCompareRequest names the product to compare.
type AddToCompareRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
}

// HandleAddToCompare adds a catalog product to the compare list.
func (h *CompareHandler) HandleAddToCompare(c *fiber.Ctx) error {
	var req AddToCompareRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validator.Check(req, "Invalid compare request"); err != nil {
		return respondError(c, h.logger, err, "Could not add to compare")
	}
	product, err := h.products.GetProductByID(req.ProductID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not add to compare")
	}
	if err := h.compare.Add(*product); err != nil {
		return respondError(c, h.logger, err, "Could not add to compare")
	}
	return c.Status(fiber.StatusCreated).JSON(h.snapshot())
}

// HandleIsInCompare reports whether a product is being compared.
func (h *CompareHandler) HandleIsInCompare(c *fiber.Ctx) error {
	id, err := intParam(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	return c.JSON(fiber.Map{"product_id": id, "in_compare": h.compare.Contains(id)})
}

// HandleRemoveFromCompare drops a product from the compare list.
func (h *CompareHandler) HandleRemoveFromCompare(c *fiber.Ctx) error {
	id, err := intParam(c, "productId")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	h.compare.Remove(id)
	return c.JSON(h.snapshot())
}

// HandleClearCompare empties the compare list.
func (h *CompareHandler) HandleClearCompare(c *fiber.Ctx) error {
	h.compare.Clear()
	return c.JSON(h.snapshot())
}
