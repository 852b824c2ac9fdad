package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

type orderFixture struct {
	service   *services.OrderService
	orders    *repositories.MemoryOrderRepository
	publisher *MockPublisher
	notes     *notify.Recorder
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	orders := repositories.NewMemoryOrderRepository()
	require.NoError(t, repositories.SeedOrders(orders, repositories.DemoOrders()))
	products := repositories.NewMemoryProductRepository()
	_, err := repositories.SeedProducts(products, repositories.CatalogSeed())
	require.NoError(t, err)

	publisher := new(MockPublisher)
	notes := notify.NewRecorder(0)
	return &orderFixture{
		service:   services.NewOrderService(orders, products, publisher, notes, zap.NewNop()),
		orders:    orders,
		publisher: publisher,
		notes:     notes,
	}
}

func orderIDs(orders []models.Order) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name  string
		query services.OrderQuery
		want  []int64
	}{
		{"all orders newest first", services.OrderQuery{}, []int64{1001, 1002, 1003, 1004, 1005}},
		{"status all", services.OrderQuery{Status: "all"}, []int64{1001, 1002, 1003, 1004, 1005}},
		{"status filter", services.OrderQuery{Status: "shipped"}, []int64{1002}},
		{"id substring", services.OrderQuery{Search: "003"}, []int64{1003}},
		{"name case-insensitive", services.OrderQuery{Search: "JANE"}, []int64{1002}},
		{"email", services.OrderQuery{Search: "wilson@"}, []int64{1005}},
		{"search and status", services.OrderQuery{Search: "example.com", Status: "cancelled"}, []int64{1005}},
		{"no match", services.OrderQuery{Search: "nobody"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := f.service.ListOrders(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, orderIDs(orders))
		})
	}

	_, err := f.service.ListOrders(services.OrderQuery{Status: "lost"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing, true},
		{models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, true},
		{models.OrderStatusCancelled, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusProcessing, false},
		{models.OrderStatusPending, models.OrderStatusShipped, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusShipped, models.OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, services.CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(t)
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(e rabbitmq.Event) bool {
		return e.Type == rabbitmq.EventOrderStatusChanged && e.OrderID == 1004 && e.Status == "processing" &&
			e.Total.Equal(decimal.NewFromInt(399))
	})).Return(nil).Once()

	order, err := f.service.UpdateOrderStatus(context.Background(), 1004, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)

	stored, err := f.orders.GetByID(1004)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)

	last, _ := f.notes.Last()
	assert.Equal(t, "Order status updated", last.Title)
	assert.Equal(t, "Order #1004 has been marked as processing.", last.Description)
	f.publisher.AssertExpectations(t)
}

func TestOrderService_UpdateOrderStatusRejections(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.UpdateOrderStatus(context.Background(), 1001, models.OrderStatusProcessing)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "delivered orders cannot go back to processing")

	_, err = f.service.UpdateOrderStatus(context.Background(), 1005, models.OrderStatusCancelled)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.service.UpdateOrderStatus(context.Background(), 1001, "lost")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.service.UpdateOrderStatus(context.Background(), 4242, models.OrderStatusCancelled)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	stored, err := f.orders.GetByID(1001)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, stored.Status)
	f.publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}

func TestOrderService_PublishFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture(t)
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(fmt.Errorf("broker down")).Once()

	order, err := f.service.UpdateOrderStatus(context.Background(), 1002, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	f.publisher.AssertExpectations(t)
}

func TestOrderService_Dashboard(t *testing.T) {
	f := newOrderFixture(t)

	dashboard, err := f.service.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 8, dashboard.TotalProducts)
	assert.Equal(t, 5, dashboard.TotalOrders)
	// 999 + 1999 + 1048 + 399; the cancelled order is excluded
	assert.True(t, decimal.NewFromInt(4445).Equal(dashboard.TotalRevenue), dashboard.TotalRevenue.String())
	assert.Len(t, dashboard.RecentOrders, services.RecentOrderCount)
	assert.Equal(t, int64(1001), dashboard.RecentOrders[0].ID)
}
