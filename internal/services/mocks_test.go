package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Find(filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id int) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockPublisher is a mock implementation of rabbitmq.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(ctx context.Context, event rabbitmq.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// fixedIDs hands out a fixed order number.
type fixedIDs int64

func (f fixedIDs) NewOrderID() int64 { return int64(f) }
