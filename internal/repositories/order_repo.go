package repositories

import (
	"storefront/internal/models"
)

// OrderRepository defines the interface for the admin order collection.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id int64) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id int64, status models.OrderStatus) error
}
