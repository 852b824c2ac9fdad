package repositories

import (
	"sort"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// MemoryOrderRepository is the transient in-memory order collection. Nothing it holds survives a restart.
type MemoryOrderRepository struct {
	orders map[int64]models.Order
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[int64]models.Order),
		now:    time.Now,
	}
}

// GetAll returns all orders, newest first.
func (r *MemoryOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order.Clone())
	}
	sort.Slice(orderList, func(i, j int) bool {
		if !orderList[i].OrderDate.Equal(orderList[j].OrderDate) {
			return orderList[i].OrderDate.After(orderList[j].OrderDate)
		}
		return orderList[i].ID > orderList[j].ID
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperr.NotFound("order with ID %d not found", id)
	}
	cp := order.Clone()
	return &cp, nil
}

// Create adds a new order. The ID must be set by the caller.
func (r *MemoryOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return apperr.Conflict("order with ID %d already exists", order.ID)
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = r.now()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MemoryOrderRepository) UpdateStatus(id int64, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperr.NotFound("order with ID %d not found for status update", id)
	}
	order.Status = status
	r.orders[id] = order
	return nil
}
