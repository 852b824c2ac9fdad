package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/models"
)

// setupApp builds the whole storefront on an in-memory SQLite database with no simulated delays.
func setupApp(t *testing.T) *app.App {
	t.Helper()
	cfg := &config.Config{
		AppPort:          ":0",
		LogLevel:         "error",
		LogFormat:        "json",
		DatabaseDriver:   config.DriverSQLite,
		DatabaseDSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		SeedCatalog:      true,
		JWTSecret:        "test_jwt_secret",
		SessionTTL:       time.Hour,
		BcryptCost:       bcrypt.MinCost,
		TrackingProvider: config.TrackingOrders,
	}
	require.NoError(t, cfg.Validate())

	a, err := app.NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

// call sends a JSON request and returns the status and raw body.
func call(t *testing.T, a *app.App, method, path string, body interface{}, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.Fiber.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func callMap(t *testing.T, a *app.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	status, raw := call(t, a, method, path, body, token)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return status, out
}

func login(t *testing.T, a *app.App, email, password, role string) string {
	t.Helper()
	status, resp := callMap(t, a, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password, "role": role}, "")
	require.Equal(t, http.StatusOK, status, resp)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	a := setupApp(t)
	status, resp := callMap(t, a, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "disabled", resp["rabbitmq"])
}

func TestProductEndpoints(t *testing.T) {
	a := setupApp(t)

	status, raw := call(t, a, http.MethodGet, "/api/v1/products?category=accessories&sort=price-asc", nil, "")
	require.Equal(t, http.StatusOK, status)
	var products []models.Product
	require.NoError(t, json.Unmarshal(raw, &products))
	require.Len(t, products, 4)
	assert.Equal(t, "USB-C Charging Cable", products[0].Name)
	assert.Equal(t, "Apple Watch Series 9", products[3].Name)

	status, raw = call(t, a, http.MethodGet, "/api/v1/products?q=pen&max_price=2000", nil, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &products))
	require.Len(t, products, 1)
	assert.Equal(t, 7, products[0].ID)

	status, raw = call(t, a, http.MethodGet, "/api/v1/products/categories", nil, "")
	require.Equal(t, http.StatusOK, status)
	var categories []string
	require.NoError(t, json.Unmarshal(raw, &categories))
	assert.Equal(t, []string{"Smartphones", "Laptops", "Tablets", "Accessories"}, categories)

	status, raw = call(t, a, http.MethodGet, "/api/v1/products/2", nil, "")
	require.Equal(t, http.StatusOK, status)
	var product models.Product
	require.NoError(t, json.Unmarshal(raw, &product))
	assert.Equal(t, `MacBook Pro 16"`, product.Name)
	assert.Equal(t, "1999", product.Price.String())

	status, _ = callMap(t, a, http.MethodGet, "/api/v1/products/99", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, resp := callMap(t, a, http.MethodGet, "/api/v1/products?sort=cheapest", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation", resp["error"])

	status, _ = callMap(t, a, http.MethodGet, "/api/v1/products?min_price=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCartEndpoints(t *testing.T) {
	a := setupApp(t)

	status, resp := callMap(t, a, http.MethodPost, "/api/v1/cart/items", map[string]int{"productId": 6, "quantity": 1}, "")
	require.Equal(t, http.StatusCreated, status, resp)
	status, resp = callMap(t, a, http.MethodPost, "/api/v1/cart/items", map[string]int{"productId": 6}, "")
	require.Equal(t, http.StatusCreated, status, resp)
	assert.Equal(t, float64(2), resp["item_count"])
	display := resp["display"].(map[string]interface{})
	// 198 is above the free shipping threshold
	assert.Equal(t, "$198.00", display["subtotal"])
	assert.Equal(t, "$0.00", display["shipping"])
	assert.Equal(t, "$9.90", display["tax"])
	assert.Equal(t, "$207.90", display["total"])

	status, resp = callMap(t, a, http.MethodPatch, "/api/v1/cart/items/6", map[string]int{"quantity": 0}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), resp["item_count"])
	assert.Empty(t, resp["items"])

	status, resp = callMap(t, a, http.MethodPost, "/api/v1/cart/items", map[string]int{"productId": 99}, "")
	assert.Equal(t, http.StatusNotFound, status, resp)

	status, resp = callMap(t, a, http.MethodPost, "/api/v1/cart/items", map[string]int{"productId": 1, "quantity": 0}, "")
	assert.Equal(t, http.StatusBadRequest, status, resp)
	assert.NotEmpty(t, resp["violations"])

	status, _ = callMap(t, a, http.MethodPatch, "/api/v1/cart/items/1", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	_, _ = callMap(t, a, http.MethodPost, "/api/v1/cart/items", map[string]int{"productId": 1}, "")
	status, resp = callMap(t, a, http.MethodDelete, "/api/v1/cart", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), resp["item_count"])
	assert.True(t, a.Cart.IsEmpty())
}

func TestCompareEndpoints(t *testing.T) {
	a := setupApp(t)

	for id := 1; id <= 4; id++ {
		status, resp := callMap(t, a, http.MethodPost, "/api/v1/compare", map[string]int{"productId": id}, "")
		require.Equal(t, http.StatusCreated, status, resp)
	}

	status, resp := callMap(t, a, http.MethodPost, "/api/v1/compare", map[string]int{"productId": 5}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Compare limit reached", resp["message"])

	status, resp = callMap(t, a, http.MethodDelete, "/api/v1/compare/4", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), resp["count"])

	status, resp = callMap(t, a, http.MethodPost, "/api/v1/compare", map[string]int{"productId": 1}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Already in compare", resp["message"])

	status, resp = callMap(t, a, http.MethodGet, "/api/v1/compare/1", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp["in_compare"])

	status, resp = callMap(t, a, http.MethodDelete, "/api/v1/compare", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), resp["count"])
}

func TestAuthAndAdminAccess(t *testing.T) {
	a := setupApp(t)

	status, resp := callMap(t, a, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "admin@example.com", "password": "admin123", "role": "customer"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", resp["message"])

	status, resp = callMap(t, a, http.MethodGet, "/api/v1/auth/session", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, resp["authenticated"])
	assert.Equal(t, "Invalid email or password", resp["error"])

	status, resp = callMap(t, a, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, status, resp)

	status, resp = callMap(t, a, http.MethodGet, "/api/v1/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "/login", resp["redirect"])

	customer := login(t, a, "customer@example.com", "customer123", "")
	status, _ = callMap(t, a, http.MethodGet, "/api/v1/admin/orders", nil, customer)
	assert.Equal(t, http.StatusForbidden, status)

	admin := login(t, a, "admin@example.com", "admin123", "admin")
	// the customer session was replaced by the admin login
	status, _ = callMap(t, a, http.MethodGet, "/api/v1/admin/orders", nil, customer)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp = callMap(t, a, http.MethodGet, "/api/v1/auth/session", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp["authenticated"])
	assert.Equal(t, "authenticated", resp["state"])
	assert.Equal(t, "admin", resp["user"].(map[string]interface{})["role"])

	status, raw := call(t, a, http.MethodGet, "/api/v1/admin/orders?status=pending", nil, admin)
	require.Equal(t, http.StatusOK, status)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(raw, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1004), orders[0].ID)

	status, resp = callMap(t, a, http.MethodPatch, "/api/v1/admin/orders/1004/status", map[string]string{"status": "processing"}, admin)
	require.Equal(t, http.StatusOK, status, resp)
	assert.Equal(t, "Order #1004 has been marked as processing.", resp["message"])

	status, resp = callMap(t, a, http.MethodPatch, "/api/v1/admin/orders/1001/status", map[string]string{"status": "processing"}, admin)
	assert.Equal(t, http.StatusConflict, status, resp)

	status, _ = callMap(t, a, http.MethodGet, "/api/v1/admin/orders/4242", nil, admin)
	assert.Equal(t, http.StatusNotFound, status)

	status, resp = callMap(t, a, http.MethodGet, "/api/v1/admin/dashboard", nil, admin)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(8), resp["total_products"])
	assert.Equal(t, float64(5), resp["total_orders"])

	status, _ = callMap(t, a, http.MethodPost, "/api/v1/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = callMap(t, a, http.MethodGet, "/api/v1/admin/orders", nil, admin)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminProductManagement(t *testing.T) {
	a := setupApp(t)
	admin := login(t, a, "admin@example.com", "admin123", "")

	status, resp := callMap(t, a, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{"name": "Empty"}, admin)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please fill in all required fields.", resp["message"])

	newProduct := map[string]interface{}{
		"name":        "Smart Display",
		"description": "Home hub with a 10 inch screen",
		"price":       "229.99",
		"category":    "Accessories",
		"images":      []string{"/images/smart-display.jpg"},
	}
	status, resp = callMap(t, a, http.MethodPost, "/api/v1/admin/products", newProduct, admin)
	require.Equal(t, http.StatusCreated, status, resp)
	assert.Equal(t, float64(9), resp["id"])

	newProduct["price"] = 199
	status, resp = callMap(t, a, http.MethodPut, "/api/v1/admin/products/9", newProduct, admin)
	require.Equal(t, http.StatusOK, status, resp)

	status, raw := call(t, a, http.MethodGet, "/api/v1/products/9", nil, "")
	require.Equal(t, http.StatusOK, status)
	var product models.Product
	require.NoError(t, json.Unmarshal(raw, &product))
	assert.Equal(t, "199", product.Price.String())

	status, resp = callMap(t, a, http.MethodDelete, "/api/v1/admin/products/9", nil, admin)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Product deleted", resp["message"])

	status, _ = callMap(t, a, http.MethodDelete, "/api/v1/admin/products/9", nil, admin)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCheckoutAndTracking(t *testing.T) {
	a := setupApp(t)

	form := map[string]string{
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"email":      "ada@example.com",
		"phone":      "555-0100",
		"address":    "12 Analytical St",
		"city":       "London",
		"postalCode": "N1 9GU",
		"country":    "UK",
	}

	status, resp := callMap(t, a, http.MethodPost, "/api/v1/checkout", form, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cart is empty", resp["message"])
	assert.Equal(t, "/products", resp["redirect"])

	_, _ = callMap(t, a, http.MethodPost, "/api/v1/cart/items", map[string]int{"productId": 8, "quantity": 2}, "")

	status, resp = callMap(t, a, http.MethodPost, "/api/v1/checkout", map[string]string{"firstName": "Ada"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, resp["violations"], 7)

	status, resp = callMap(t, a, http.MethodPost, "/api/v1/checkout", form, "")
	require.Equal(t, http.StatusCreated, status, resp)
	redirect := resp["redirect"].(string)
	assert.True(t, strings.HasPrefix(redirect, "/order-tracking/"))
	display := resp["display"].(map[string]interface{})
	assert.Equal(t, "$38.00", display["subtotal"])
	assert.Equal(t, "$10.00", display["shipping"])
	assert.Equal(t, "$1.90", display["tax"])
	assert.Equal(t, "$49.90", display["total"])
	assert.True(t, a.Cart.IsEmpty())

	status, raw := call(t, a, http.MethodGet, "/api/v1/notifications", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "Order Placed Successfully")

	status, resp = callMap(t, a, http.MethodGet, "/api/v1/orders/1002/tracking", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Order Shipped", resp["label"])
	assert.Equal(t, float64(75), resp["progress"])

	status, _ = callMap(t, a, http.MethodGet, "/api/v1/orders/1005/tracking", nil, "")
	assert.Equal(t, http.StatusConflict, status)

	// checkout orders are not kept in the admin collection
	status, _ = callMap(t, a, http.MethodGet, "/api/v1/orders/"+strings.TrimPrefix(redirect, "/order-tracking/")+"/tracking", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotificationsDrain(t *testing.T) {
	a := setupApp(t)
	_, _ = callMap(t, a, http.MethodPost, "/api/v1/cart/items", map[string]int{"productId": 1}, "")

	status, raw := call(t, a, http.MethodGet, "/api/v1/notifications?drain=true", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "Added to cart")

	status, raw = call(t, a, http.MethodGet, "/api/v1/notifications", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))
}

