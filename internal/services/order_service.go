package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// StatusAll disables status filtering in an OrderQuery.
const StatusAll = "all"

// RecentOrderCount is the number of orders shown on the dashboard.
const RecentOrderCount = 5

// OrderQuery filters the admin order list.
type OrderQuery struct {
	Search string // substring of the order id, customer name or email
	Status string // an OrderStatus, "all" or ""
}

// Dashboard summarises the store for the admin overview.
type Dashboard struct {
	TotalProducts int             `json:"total_products"`
	TotalOrders   int             `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	RecentOrders  []models.Order  `json:"recent_orders"`
}

// OrderService handles the admin back-office over the order collection.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   rabbitmq.Publisher
	notifier    notify.Notifier
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	publisher rabbitmq.Publisher,
	notifier notify.Notifier,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger,
	}
}

// ListOrders returns the orders matching q, newest first.
func (s *OrderService) ListOrders(q OrderQuery) ([]models.Order, error) {
	status := strings.ToLower(strings.TrimSpace(q.Status))
	if status != "" && status != StatusAll && !models.OrderStatus(status).Valid() {
		return nil, invalidStatus(status)
	}

	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && status != StatusAll && string(o.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strconv.FormatInt(o.ID, 10), search) &&
			!strings.Contains(strings.ToLower(o.CustomerName), search) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), search) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id int64) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CanTransition reports whether an order may move from one status to another.
// Orders advance one step at a time and can be cancelled until they are cancelled.
func CanTransition(from, to models.OrderStatus) bool {
	switch to {
	case models.OrderStatusCancelled:
		return from != models.OrderStatusCancelled
	case models.OrderStatusProcessing:
		return from == models.OrderStatusPending
	case models.OrderStatusShipped:
		return from == models.OrderStatusProcessing
	case models.OrderStatusDelivered:
		return from == models.OrderStatusShipped
	default:
		return false
	}
}

// UpdateOrderStatus moves an order to status and announces the change.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalidStatus(string(status))
	}
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, status) {
		return nil, apperr.Conflict("order %d cannot move from %s to %s", id, order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %d: %w", id, err)
	}
	order.Status = status

	s.logger.Info("order status updated", zap.Int64("order_id", id), zap.String("status", string(status)))
	s.notifier.Notify(notify.Info("Order status updated", fmt.Sprintf("Order #%d has been marked as %s.", id, status)))

	event := rabbitmq.Event{
		Type:       rabbitmq.EventOrderStatusChanged,
		OrderID:    id,
		Status:     string(status),
		Total:      order.TotalAmount,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish order event", zap.Int64("order_id", id), zap.Error(err))
	}
	return order, nil
}

// Dashboard computes the admin overview. Revenue counts every order that was not cancelled.
func (s *OrderService) Dashboard() (*Dashboard, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	revenue := decimal.Zero
	for _, o := range orders {
		if o.Status != models.OrderStatusCancelled {
			revenue = revenue.Add(o.TotalAmount)
		}
	}
	recent := orders
	if len(recent) > RecentOrderCount {
		recent = recent[:RecentOrderCount]
	}
	return &Dashboard{
		TotalProducts: len(products),
		TotalOrders:   len(orders),
		TotalRevenue:  revenue,
		RecentOrders:  recent,
	}, nil
}

func invalidStatus(status string) error {
	return apperr.Validation(fmt.Sprintf("invalid order status: %s", status), apperr.Violation{
		Field:   "status",
		Rule:    "oneof",
		Message: "status must be one of [pending processing shipped delivered cancelled]",
	})
}
