package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billiampalad/UMKM-sub000/internal/handlers"
	"github.com/billiampalad/UMKM-sub000/internal/middleware"
	"github.com/billiampalad/UMKM-sub000/internal/models"
	"github.com/billiampalad/UMKM-sub000/internal/repositories"
	"github.com/billiampalad/UMKM-sub000/internal/services"
)

var integrationDBCounter int64

// setupApp builds a Fiber app over a fresh in-memory SQLite database with the
// full handler stack, mirroring the production wiring minus RabbitMQ.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers%d?mode=memory&cache=shared", atomic.AddInt64(&integrationDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Transaction{},
		&models.TransactionItem{},
	))

	store := repositories.NewGORMStore(db)
	userRepo := repositories.NewGORMUserRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	productService := services.NewProductService(store.Products())
	cartService := services.NewCartService(store.Carts(), store.Products())
	transactionService := services.NewTransactionService(store, store, nil) // nil for RabbitMQ client

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	userHandler.RegisterRoutes(protectedRoutes)
	productHandler.RegisterRoutes(protectedRoutes)
	cartHandler.RegisterRoutes(protectedRoutes)
	transactionHandler.RegisterRoutes(protectedRoutes)

	return app, db
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
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

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// registerAndLogin creates a user with the given role and returns a JWT.
func registerAndLogin(t *testing.T, app *fiber.App, username, role string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := loginResp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createProduct(t *testing.T, app *fiber.App, adminToken, name string, price float64, stock int) uint {
	t.Helper()

	resp, created := doJSON(t, app, http.MethodPost, "/api/v1/products", adminToken, map[string]interface{}{
		"name":        name,
		"description": "integration test item",
		"price":       price,
		"stock":       stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := created["id"].(float64)
	require.True(t, ok)
	return uint(id)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t)

	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	resp, registerResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", userToRegister)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", registerResp["message"])

	// Duplicate registration (username)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", userToRegister)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login
	resp, loginResp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, loginResp["token"])

	// Wrong password
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductEndpointsRequireAuthAndRole(t *testing.T) {
	app, _ := setupApp(t)

	// No token at all.
	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	adminToken := registerAndLogin(t, app, "admin1", models.RoleAdmin)
	employeeToken := registerAndLogin(t, app, "kasir1", models.RoleEmployee)

	// Employees can read but not write.
	productID := createProduct(t, app, adminToken, "Beras Premium 5kg", 70000, 10)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/products", employeeToken, map[string]interface{}{
		"name":  "Should Fail",
		"price": 1000.0,
		"stock": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, fetched := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", productID), employeeToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Beras Premium 5kg", fetched["name"])

	// Unknown product id.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/products/9999", employeeToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Admin update and delete.
	resp, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", productID), adminToken, map[string]interface{}{
		"name":  "Beras Premium 5kg",
		"price": 72000.0,
		"stock": 12,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", productID), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	app, db := setupApp(t)

	adminToken := registerAndLogin(t, app, "admin2", models.RoleAdmin)
	kasirToken := registerAndLogin(t, app, "kasir2", models.RoleEmployee)

	productID := createProduct(t, app, adminToken, "Minyak Goreng 1L", 100000, 5)

	// Checkout on an empty cart.
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/transactions/checkout", kasirToken, map[string]string{
		"metode_pembayaran": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cart is empty", body["message"])

	// Add to cart, then check the cart echoes the line with a subtotal.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", kasirToken, map[string]interface{}{
		"id_product": productID,
		"jumlah":     2,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, cart := doJSON(t, app, http.MethodGet, "/api/v1/cart", kasirToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 200000, cart["total"])

	// Checkout succeeds with the documented shape.
	resp, checkout := doJSON(t, app, http.MethodPost, "/api/v1/transactions/checkout", kasirToken, map[string]string{
		"metode_pembayaran": "cash",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 200000, checkout["total"])
	assert.Equal(t, "cash", checkout["metode_pembayaran"])
	assert.Equal(t, models.StatusCompleted, checkout["status"])
	assert.EqualValues(t, 1, checkout["items_count"])
	assert.NotEmpty(t, checkout["invoice"])

	// Stock went down, cart is empty.
	resp, product := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", productID), kasirToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, product["stock"])

	resp, cart = doJSON(t, app, http.MethodGet, "/api/v1/cart", kasirToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, cart["items"], 0)

	// Cancel a completed transaction is rejected.
	orderID := uint(checkout["id_order"].(float64))
	resp, body = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/transactions/%d/cancel", orderID), kasirToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only pending transactions can be canceled", body["message"])

	// The transaction is visible to its owner with items.
	resp, fetched := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/transactions/%d", orderID), kasirToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 200000, fetched["total"])

	// But reads as not-found for another non-admin user.
	otherToken := registerAndLogin(t, app, "kasir3", models.RoleEmployee)
	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/transactions/%d", orderID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Sanity check at the database level: total matches the item subtotals.
	var stored models.Transaction
	require.NoError(t, db.Preload("Items").First(&stored, "id = ?", orderID).Error)
	var sum float64
	for _, item := range stored.Items {
		sum += item.Subtotal
	}
	assert.Equal(t, stored.Total, sum)
}

func TestDirectCheckoutValidationAndStock(t *testing.T) {
	app, _ := setupApp(t)

	adminToken := registerAndLogin(t, app, "admin3", models.RoleAdmin)
	productID := createProduct(t, app, adminToken, "Gula Pasir 1kg", 14000, 1)

	// Unknown product.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/transactions/direct", adminToken, map[string]interface{}{
		"metode_pembayaran": "cash",
		"items":             []map[string]interface{}{{"id_product": 999, "jumlah": 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Insufficient stock carries the structured detail.
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/transactions/direct", adminToken, map[string]interface{}{
		"metode_pembayaran": "cash",
		"items":             []map[string]interface{}{{"id_product": productID, "jumlah": 2}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualValues(t, 1, body["available_stock"])
	assert.EqualValues(t, 2, body["requested_quantity"])
	assert.EqualValues(t, productID, body["id_product"])

	// Payment method bound (one character) fails validation.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/transactions/direct", adminToken, map[string]interface{}{
		"metode_pembayaran": "x",
		"items":             []map[string]interface{}{{"id_product": productID, "jumlah": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A valid direct checkout drains the stock.
	resp, success := doJSON(t, app, http.MethodPost, "/api/v1/transactions/direct", adminToken, map[string]interface{}{
		"metode_pembayaran": "qris",
		"items":             []map[string]interface{}{{"id_product": productID, "jumlah": 1}},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 14000, success["total"])
}

func TestCancelPendingTransactionOverHTTP(t *testing.T) {
	app, db := setupApp(t)

	adminToken := registerAndLogin(t, app, "admin4", models.RoleAdmin)
	kasirToken := registerAndLogin(t, app, "kasir4", models.RoleEmployee)
	productID := createProduct(t, app, adminToken, "Kopi Bubuk 250g", 25000, 5)

	// Find the kasir's user id to own the seeded pending transaction.
	var kasir models.User
	require.NoError(t, db.First(&kasir, "username = ?", "kasir4").Error)

	pending := models.Transaction{
		Invoice:       "pending-http-test",
		UserID:        kasir.ID,
		Total:         50000,
		PaymentMethod: "cash",
		Status:        models.StatusPending,
		Items: []models.TransactionItem{
			{ProductID: productID, Quantity: 2, Price: 25000, Subtotal: 50000},
		},
	}
	require.NoError(t, db.Create(&pending).Error)

	// A different employee cannot cancel it (reads as not found).
	otherToken := registerAndLogin(t, app, "kasir5", models.RoleEmployee)
	resp, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/transactions/%d/cancel", pending.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The owner cancels it and stock is restored.
	resp, body := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/transactions/%d/cancel", pending.ID), kasirToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, pending.ID, body["id_order"])
	assert.EqualValues(t, 1, body["items_restored"])

	resp, product := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", productID), kasirToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 7, product["stock"])

	// Cancelling again is rejected and stock does not move.
	resp, body = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/transactions/%d/cancel", pending.ID), kasirToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only pending transactions can be canceled", body["message"])

	resp, product = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", productID), kasirToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 7, product["stock"])
}

func TestUserEndpoints(t *testing.T) {
	app, _ := setupApp(t)

	adminToken := registerAndLogin(t, app, "admin5", models.RoleAdmin)
	employeeToken := registerAndLogin(t, app, "kasir6", models.RoleEmployee)

	resp, me := doJSON(t, app, http.MethodGet, "/api/v1/users/me", employeeToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "kasir6", me["username"])
	assert.Equal(t, models.RoleEmployee, me["role"])

	// Listing users is admin-only.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/users", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer listResp.Body.Close()
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	var users []models.User
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&users))
	assert.GreaterOrEqual(t, len(users), 2)
}
