package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/services"
)

// OrderHandler handles HTTP requests for the admin order back-office.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{service: service, logger: logger}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	router.Get("/dashboard", h.HandleDashboard)
}

// HandleGetOrders lists orders matching ?search and ?status.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(services.OrderQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	order, err := h.service.GetOrderByID(id)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus moves an order to the status in the body.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, h.logger, err, "")
	}
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return invalidBody(c, err)
	}
	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), id, models.OrderStatus(updateData.Status))
	if err != nil {
		return respondError(c, h.logger, err, "Could not update order status")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order #%d has been marked as %s.", id, order.Status),
		"order":   order,
	})
}

// HandleDashboard returns the admin overview.
func (h *OrderHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard()
	if err != nil {
		return respondError(c, h.logger, err, "Could not build dashboard")
	}
	return c.JSON(dashboard)
}

func orderID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("order %s not found", c.Params("id"))
	}
	return id, nil
}
