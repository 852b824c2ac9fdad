package tracking

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// StatusProvider resolves the current stage of an order.
type StatusProvider interface {
	Status(ctx context.Context, orderID string) (Stage, error)
}

// RandomStatusProvider draws a uniformly random stage on every call, so two
// lookups of the same order may disagree.
type RandomStatusProvider struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomStatusProvider creates a provider drawing from rnd, or from the
// global source when rnd is nil.
func NewRandomStatusProvider(rnd *rand.Rand) *RandomStatusProvider {
	return &RandomStatusProvider{rnd: rnd}
}

func (p *RandomStatusProvider) Status(ctx context.Context, _ string) (Stage, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p.rnd == nil {
		return Stage(rand.IntN(StageCount)), nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stage(p.rnd.IntN(StageCount)), nil
}

// OrderStatusProvider derives the stage from the admin order collection.
type OrderStatusProvider struct {
	orders repositories.OrderRepository
}

func NewOrderStatusProvider(orders repositories.OrderRepository) *OrderStatusProvider {
	return &OrderStatusProvider{orders: orders}
}

func (p *OrderStatusProvider) Status(ctx context.Context, orderID string) (Stage, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return 0, apperr.NotFound("order %s not found", orderID)
	}
	order, err := p.orders.GetByID(id)
	if err != nil {
		return 0, err
	}
	return StageForStatus(order.Status)
}

// StageForStatus maps an order status to its delivery stage. Cancelled orders
// have no stage.
func StageForStatus(status models.OrderStatus) (Stage, error) {
	switch status {
	case models.OrderStatusPending:
		return StageConfirmed, nil
	case models.OrderStatusProcessing:
		return StageProcessing, nil
	case models.OrderStatusShipped:
		return StageShipping, nil
	case models.OrderStatusDelivered:
		return StageDelivered, nil
	case models.OrderStatusCancelled:
		return 0, apperr.Conflict("order was cancelled")
	default:
		return 0, apperr.Conflict("order has unknown status %q", status)
	}
}
