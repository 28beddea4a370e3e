package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"duka/internal/handlers"
	"duka/internal/jobs"
	"duka/internal/middleware"
	"duka/internal/models"
	"duka/internal/repositories"
	"duka/internal/services"
	"duka/pkg/rabbitmq"
	"duka/pkg/secrets"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "duka.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "change-me")
	// 32-byte key, hex encoded. Generate a real one for production.
	viper.SetDefault("SETTINGS_ENCRYPTION_KEY", "6368616e67652d6d652d6368616e67652d6d652d6368616e67652d6d652d2121")
	viper.SetDefault("SWEEP_SCHEDULE", "@hourly")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := openDatabase(viper.GetString("DATABASE_DRIVER"), viper.GetString("DATABASE_DSN"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
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
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; order events will not be published")
	}

	// --- Settings encryption ---
	cipher, err := secrets.NewCipher(viper.GetString("SETTINGS_ENCRYPTION_KEY"))
	if err != nil {
		log.Fatalf("Failed to initialize settings cipher: %v", err)
	}

	// --- Repositories ---
	settingRepo := repositories.NewGORMSettingRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	customerRepo := repositories.NewGORMCustomerRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	settingsService := services.NewSettingsService(settingRepo, cipher)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	checkoutService := services.NewCheckoutService(cartRepo, customerRepo, orderRepo, paymentRepo, settingsService, eventPublisher(mqClient))
	orderService := services.NewOrderService(orderRepo, paymentRepo, eventPublisher(mqClient))
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"))

	if err := settingsService.InitializeDefaults(); err != nil {
		log.Fatalf("Failed to seed default settings: %v", err)
	}

	// --- Deadline sweep ---
	sweep := jobs.NewDeadlineSweep(orderRepo, paymentRepo, sweepPublisher(mqClient))
	if err := sweep.Start(viper.GetString("SWEEP_SCHEDULE")); err != nil {
		log.Fatalf("Failed to start deadline sweep: %v", err)
	}
	defer sweep.Stop()

	// --- Handlers ---
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger

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

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- RabbitMQ consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received order event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				// Downstream effects (confirmation emails, inventory) hook in
				// here.
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured GORM backend.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}

// eventPublisher converts the possibly-nil client into the services
// interface without producing a typed-nil.
func eventPublisher(c *rabbitmq.Client) services.OrderEventPublisher {
	if c == nil {
		return nil
	}
	return c
}

func sweepPublisher(c *rabbitmq.Client) jobs.OrderEventPublisher {
	if c == nil {
		return nil
	}
	return c
}
