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
	"testing"

	"duka/internal/handlers"
	"duka/internal/middleware"
	"duka/internal/models"
	"duka/internal/repositories"
	"duka/internal/services"
	"duka/pkg/secrets"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testEncryptionKey = "6368616e67652d6d652d6368616e67652d6d652d6368616e67652d6d652d2121"

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services, mirroring the wiring in main.go. Each test gets its own
// named in-memory database so state never leaks between tests.
func setupApp(dbName string) (*fiber.App, *services.AuthService, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.Setting{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Customer{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.User{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	cipher, err := secrets.NewCipher(testEncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize settings cipher: %w", err)
	}

	// Repositories
	settingRepo := repositories.NewGORMSettingRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	customerRepo := repositories.NewGORMCustomerRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// Services; nil publisher because no broker runs in tests
	settingsService := services.NewSettingsService(settingRepo, cipher)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	checkoutService := services.NewCheckoutService(cartRepo, customerRepo, orderRepo, paymentRepo, settingsService, nil)
	orderService := services.NewOrderService(orderRepo, paymentRepo, nil)
	authService := services.NewAuthService(userRepo, jwtSecret)

	if err := settingsService.InitializeDefaults(); err != nil {
		return nil, nil, fmt.Errorf("failed to seed default settings: %w", err)
	}

	// Handlers
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	// Public storefront routes
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)

	// Admin routes require a valid JWT
	adminRoutes := apiV1.Group("/admin", middleware.AuthRequired(authService))
	settingsHandler.RegisterRoutes(adminRoutes)
	orderHandler.RegisterRoutes(adminRoutes)
	productHandler.RegisterAdminRoutes(adminRoutes)

	seedProductsForTest(productRepo)

	return app, authService, nil
}

// seedProductsForTest populates the product catalog for tests.
func seedProductsForTest(repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Chitenge Fabric", SKU: "CHI-001", Description: "Two meter wax print", Price: 150.00, TaxRate: 0.16, Stock: 25},
		{Name: "Copper Bracelet", SKU: "COP-001", Description: "Handmade copper bracelet", Price: 80.00, TaxRate: 0.16, Stock: 40},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Failed to seed product %s: %v", products[i].Name, err)
		}
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// doJSON issues a JSON request against the app and decodes the response into
// out (when out is non-nil), returning the status code.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reqBody = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// registerAndLogin creates an admin account and returns a bearer token.
func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	status := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "adminuser",
		"email":    "admin@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)

	var loginResp map[string]string
	status = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "adminuser",
		"password": "password123",
	}, &loginResp)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp("auth_flow")
	assert.NoError(t, err)

	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	var registerResp map[string]interface{}
	status := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", userToRegister, &registerResp)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", registerResp["message"])

	// Duplicate registration is rejected
	status = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", userToRegister, nil)
	assert.Equal(t, http.StatusConflict, status)

	var loginResp map[string]string
	status = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "password123",
	}, &loginResp)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, loginResp["token"])

	claims, err := authService.ValidateToken(loginResp["token"])
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	app, _, err := setupApp("admin_auth")
	assert.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, app, http.MethodGet, "/api/v1/admin/settings/", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, app, http.MethodGet, "/api/v1/admin/orders/", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, app, http.MethodPost, "/api/v1/admin/products/", "", map[string]interface{}{
		"name": "Nope", "price": 1.0, "stock": 1,
	}, nil))
}

func TestSettingsEndpoints(t *testing.T) {
	app, _, err := setupApp("settings_flow")
	assert.NoError(t, err)
	token := registerAndLogin(t, app)

	// Defaults were seeded at startup and come back grouped by category
	var grouped map[string][]models.Setting
	status := doJSON(t, app, http.MethodGet, "/api/v1/admin/settings/", token, nil, &grouped)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, grouped, "checkout")
	assert.Contains(t, grouped, "payment")

	// Update a plain setting
	var updated models.Setting
	status = doJSON(t, app, http.MethodPut, "/api/v1/admin/settings/checkout/payment_deadline_hours", token, map[string]interface{}{
		"value": "48",
		"type":  "number",
	}, &updated)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "48", updated.Value)

	var fetched models.Setting
	status = doJSON(t, app, http.MethodGet, "/api/v1/admin/settings/checkout/payment_deadline_hours", token, nil, &fetched)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "48", fetched.Value)

	// A sensitive setting never echoes its value on write...
	status = doJSON(t, app, http.MethodPut, "/api/v1/admin/settings/payment/gateway_api_key", token, map[string]interface{}{
		"value":        "sk_live_abc123",
		"is_sensitive": true,
	}, &updated)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, updated.Value)
	assert.True(t, updated.IsSensitive)

	// ...but reads decrypt transparently
	status = doJSON(t, app, http.MethodGet, "/api/v1/admin/settings/payment/gateway_api_key", token, nil, &fetched)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "sk_live_abc123", fetched.Value)

	// Unknown settings are a 404
	status = doJSON(t, app, http.MethodGet, "/api/v1/admin/settings/checkout/no_such_key", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartCheckoutAndOrderFlow(t *testing.T) {
	app, _, err := setupApp("checkout_flow")
	assert.NoError(t, err)
	token := registerAndLogin(t, app)

	// Pick a product from the public catalog
	var products []models.Product
	status := doJSON(t, app, http.MethodGet, "/api/v1/products/", "", nil, &products)
	assert.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, len(products), 2)
	product := products[0]

	// Build a cart
	var cart models.Cart
	status = doJSON(t, app, http.MethodPost, "/api/v1/carts/", "", nil, &cart)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.CartStatusOpen, cart.Status)

	status = doJSON(t, app, http.MethodPost, "/api/v1/carts/"+cart.ID+"/items", "", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	}, &cart)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, product.Price, cart.Items[0].UnitPrice)
	assert.Greater(t, cart.Total, 0.0)

	// Check out with bank transfer
	var result services.CheckoutResult
	status = doJSON(t, app, http.MethodPost, "/api/v1/checkout", "", map[string]interface{}{
		"cart_id": cart.ID,
		"customer": map[string]string{
			"email":      "mary.banda@example.com",
			"first_name": "Mary",
			"last_name":  "Banda",
		},
		"shipping_address": map[string]string{
			"line1":   "Plot 12, Great East Road",
			"city":    "Lusaka",
			"country": "Zambia",
		},
		"payment_method": models.PaymentMethodBankTransfer,
	}, &result)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.OrderStatusPendingPayment, result.Order.Status)
	assert.NotNil(t, result.Order.PaymentDeadline)
	assert.Equal(t, models.PaymentStatusPending, result.Payment.Status)
	assert.Equal(t, cart.Total, result.Order.Total)

	// The consumed cart rejects further mutation
	status = doJSON(t, app, http.MethodPost, "/api/v1/carts/"+cart.ID+"/items", "", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// And checking the same cart out again fails too
	status = doJSON(t, app, http.MethodPost, "/api/v1/checkout", "", map[string]interface{}{
		"cart_id": cart.ID,
		"customer": map[string]string{
			"email":      "mary.banda@example.com",
			"first_name": "Mary",
			"last_name":  "Banda",
		},
		"shipping_address": map[string]string{
			"line1":   "Plot 12, Great East Road",
			"city":    "Lusaka",
			"country": "Zambia",
		},
		"payment_method": models.PaymentMethodBankTransfer,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// The order shows up on the admin surface
	var order models.Order
	status = doJSON(t, app, http.MethodGet, "/api/v1/admin/orders/"+result.Order.ID, token, nil, &order)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, result.Order.ID, order.ID)
	assert.Len(t, order.Items, 1)

	// Settle it
	status = doJSON(t, app, http.MethodPost, "/api/v1/admin/orders/"+order.ID+"/pay", token, nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status = doJSON(t, app, http.MethodGet, "/api/v1/admin/orders/"+order.ID, token, nil, &order)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	// A paid order cannot be cancelled
	status = doJSON(t, app, http.MethodPost, "/api/v1/admin/orders/"+order.ID+"/cancel", token, map[string]string{
		"reason": "changed my mind",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCheckoutValidation(t *testing.T) {
	app, _, err := setupApp("checkout_validation")
	assert.NoError(t, err)

	// Unknown payment method fails struct validation
	status := doJSON(t, app, http.MethodPost, "/api/v1/checkout", "", map[string]interface{}{
		"cart_id": "irrelevant",
		"customer": map[string]string{
			"email":      "mary.banda@example.com",
			"first_name": "Mary",
			"last_name":  "Banda",
		},
		"shipping_address": map[string]string{
			"line1":   "Plot 12",
			"city":    "Lusaka",
			"country": "Zambia",
		},
		"payment_method": "cheque",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Empty cart is rejected
	var cart models.Cart
	status = doJSON(t, app, http.MethodPost, "/api/v1/carts/", "", nil, &cart)
	assert.Equal(t, http.StatusCreated, status)

	status = doJSON(t, app, http.MethodPost, "/api/v1/checkout", "", map[string]interface{}{
		"cart_id": cart.ID,
		"customer": map[string]string{
			"email":      "mary.banda@example.com",
			"first_name": "Mary",
			"last_name":  "Banda",
		},
		"shipping_address": map[string]string{
			"line1":   "Plot 12",
			"city":    "Lusaka",
			"country": "Zambia",
		},
		"payment_method": models.PaymentMethodBankTransfer,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Missing cart is a 404
	status = doJSON(t, app, http.MethodPost, "/api/v1/checkout", "", map[string]interface{}{
		"cart_id": "no-such-cart",
		"customer": map[string]string{
			"email":      "mary.banda@example.com",
			"first_name": "Mary",
			"last_name":  "Banda",
		},
		"shipping_address": map[string]string{
			"line1":   "Plot 12",
			"city":    "Lusaka",
			"country": "Zambia",
		},
		"payment_method": models.PaymentMethodBankTransfer,
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProductSearchEndpoint(t *testing.T) {
	app, _, err := setupApp("product_search")
	assert.NoError(t, err)

	var results []models.Product
	status := doJSON(t, app, http.MethodGet, "/api/v1/products/search?q=chitenge", "", nil, &results)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, results, 1)
	assert.Equal(t, "Chitenge Fabric", results[0].Name)

	status = doJSON(t, app, http.MethodGet, "/api/v1/products/search?min_price=100", "", nil, &results)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, results, 1)
	assert.Equal(t, "Chitenge Fabric", results[0].Name)

	status = doJSON(t, app, http.MethodGet, "/api/v1/products/search?sort=price&order=desc", "", nil, &results)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, results, 2)
	assert.Equal(t, "Chitenge Fabric", results[0].Name)
}
