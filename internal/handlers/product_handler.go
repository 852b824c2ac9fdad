package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/services"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/categories", h.HandleGetCategories)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers product management routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists products filtered by q, category, min_price and max_price and ordered by sort.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	sortOrder, err := services.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	minPrice, err := priceQuery(c, "min_price")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	maxPrice, err := priceQuery(c, "max_price")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}

	products, err := h.service.ListProducts(services.ProductQuery{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     sortOrder,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetCategories lists the catalog categories.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// ProductRequest is the admin product form.
type ProductRequest struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Features    []string        `json:"features"`
}

func (r ProductRequest) product() *models.Product {
	return &models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Images:      models.StringList(r.Images),
		Features:    models.StringList(r.Features),
	}
}

// HandleCreateProduct adds a product to the catalog.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	product := req.product()
	if err := h.service.CreateProduct(product); err != nil {
		return respondError(c, h.logger, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the product at :id.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	product := req.product()
	product.ID = id
	if err := h.service.UpdateProduct(product); err != nil {
		return respondError(c, h.logger, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes the product at :id.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	if err := h.service.DeleteProduct(id); err != nil {
		return respondError(c, h.logger, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func priceQuery(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperr.Validation("Invalid "+key, apperr.Violation{
			Field: key, Rule: "numeric", Message: key + " must be a non-negative number",
		})
	}
	return &d, nil
}
