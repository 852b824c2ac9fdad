package repositories_test

import (
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOrderRepository(t *testing.T) {
	repo := repositories.NewMemoryOrderRepository()
	require.NoError(t, repositories.SeedOrders(repo, repositories.DemoOrders()))

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(1001), all[0].ID) // newest first

	require.NoError(t, repo.UpdateStatus(1004, models.OrderStatusProcessing))
	o, err := repo.GetByID(1004)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, o.Status)

	assert.True(t, apperr.Is(repo.UpdateStatus(42, models.OrderStatusShipped), apperr.KindNotFound))
	_, err = repo.GetByID(42)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	fresh := &models.Order{ID: 12345678}
	require.NoError(t, repo.Create(fresh))
	assert.Equal(t, models.OrderStatusPending, fresh.Status)
	assert.False(t, fresh.OrderDate.IsZero())
	assert.True(t, apperr.Is(repo.Create(&models.Order{ID: 12345678}), apperr.KindConflict))
}
