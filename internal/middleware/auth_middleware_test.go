package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/store"
)

func setup(t *testing.T) (*fiber.App, *store.Auth) {
	t.Helper()
	users, err := repositories.NewStaticUserRepository(repositories.DefaultCredentials(), bcrypt.MinCost)
	require.NoError(t, err)
	auth := store.NewAuth(users, repositories.NewMemorySessionStore(), store.NewSessionCodec("secret", time.Hour), notify.Nop{}, zap.NewNop(), 0)

	app := fiber.New()
	admin := app.Group("/admin", middleware.AuthRequired(auth, zap.NewNop()), middleware.RequireRole(models.RoleAdmin))
	admin.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(middleware.SessionFrom(c))
	})
	return app, auth
}

func get(t *testing.T, app *fiber.App, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	app, auth := setup(t)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "Token abc"))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "Bearer not-a-token"))

	_, err := auth.Login(context.Background(), "admin@example.com", "admin123", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, app, "Bearer "+auth.Token()))
}

func TestRequireRole(t *testing.T) {
	app, auth := setup(t)

	_, err := auth.Login(context.Background(), "customer@example.com", "customer123", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(t, app, "Bearer "+auth.Token()))
}
