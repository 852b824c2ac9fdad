// Package app assembles the storefront from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/store"
	"storefront/internal/tracking"
	"storefront/internal/validation"
	"storefront/pkg/rabbitmq"
)

// NotificationHistory is how many notifications the session feed keeps.
const NotificationHistory = 50

// App is one storefront process: its stores, services and HTTP server.
type App struct {
	Fiber         *fiber.App
	Config        *config.Config
	Logger        *zap.Logger
	Cart          *store.Cart
	Compare       *store.Compare
	Auth          *store.Auth
	Notifications *notify.Recorder
	Tracker       *tracking.Tracker

	db *gorm.DB
	mq *rabbitmq.Client
}

// NewApp builds every component described by cfg and registers the HTTP routes.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	productRepo, sessions, err := a.openStorage()
	if err != nil {
		return nil, err
	}

	if cfg.SeedCatalog {
		created, err := repositories.SeedProducts(productRepo, repositories.CatalogSeed())
		if err != nil {
			a.Close()
			return nil, err
		}
		logger.Info("catalog seeded", zap.Int("created", created))
	}

	orderRepo := repositories.NewMemoryOrderRepository()
	if err := repositories.SeedOrders(orderRepo, repositories.DemoOrders()); err != nil {
		a.Close()
		return nil, err
	}

	users, err := repositories.NewStaticUserRepository(repositories.DefaultCredentials(), cfg.BcryptCost)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher, err := a.openPublisher()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Notifications = notify.NewRecorder(NotificationHistory)
	notifier := notify.Multi{a.Notifications, notify.NewZapNotifier(logger)}
	validator := validation.New()

	a.Cart = store.NewCart(notifier)
	a.Compare = store.NewCompare(notifier)
	a.Auth = store.NewAuth(users, sessions, store.NewSessionCodec(cfg.JWTSecret, cfg.SessionTTL), notifier, logger, cfg.LoginDelay)
	a.Tracker = NewTracker(cfg, orderRepo, logger)

	productService := services.NewProductService(productRepo, validator, notifier, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, publisher, notifier, logger)
	checkoutService := services.NewCheckoutService(a.Cart, validator, services.RandomOrderIDGenerator{}, publisher, notifier, logger, cfg.CheckoutDelay)

	a.Fiber = fiber.New(fiber.Config{DisableStartupMessage: true})
	a.Fiber.Use(fiberlogger.New())
	a.Fiber.Get("/health", a.handleHealth)

	apiV1 := a.Fiber.Group("/api/v1")
	productHandler := handlers.NewProductHandler(productService, logger)
	productHandler.RegisterRoutes(apiV1)
	handlers.NewCartHandler(a.Cart, productService, validator, logger).RegisterRoutes(apiV1)
	handlers.NewCompareHandler(a.Compare, productService, validator, logger).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(a.Auth, validator, logger).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkoutService, logger).RegisterRoutes(apiV1)
	handlers.NewTrackingHandler(a.Tracker, logger).RegisterRoutes(apiV1)
	handlers.NewNotificationHandler(a.Notifications).RegisterRoutes(apiV1)

	// Admin routes require the token of an admin session
	adminRoutes := apiV1.Group("/admin", middleware.AuthRequired(a.Auth, logger), middleware.RequireRole(models.RoleAdmin))
	handlers.NewOrderHandler(orderService, logger).RegisterRoutes(adminRoutes)
	productHandler.RegisterAdminRoutes(adminRoutes)

	return a, nil
}

func (a *App) openStorage() (repositories.ProductRepository, repositories.SessionStore, error) {
	if a.Config.DatabaseDriver == config.DriverMemory {
		return repositories.NewMemoryProductRepository(), repositories.NewMemorySessionStore(), nil
	}
	db, err := repositories.OpenDatabase(a.Config.DatabaseDriver, a.Config.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	a.db = db
	a.Logger.Info("database connected", zap.String("driver", a.Config.DatabaseDriver))
	return repositories.NewGORMProductRepository(db), repositories.NewGORMSessionStore(db), nil
}

func (a *App) openPublisher() (rabbitmq.Publisher, error) {
	if !a.Config.RabbitMQEnabled {
		a.Logger.Info("RabbitMQ disabled; order events are dropped")
		return rabbitmq.NopPublisher{}, nil
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: a.Config.RabbitMQURL}, a.Logger)
	if err != nil {
		return nil, err
	}
	a.mq = client
	return client, nil
}

// NewTracker builds the tracker selected by TRACKING_PROVIDER.
func NewTracker(cfg *config.Config, orders repositories.OrderRepository, logger *zap.Logger) *tracking.Tracker {
	var provider tracking.StatusProvider
	switch cfg.TrackingProvider {
	case config.TrackingOrders:
		provider = tracking.NewOrderStatusProvider(orders)
	default:
		provider = tracking.NewRandomStatusProvider(nil)
	}
	return tracking.NewTracker(provider, logger)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	mq := "disabled"
	if a.mq != nil {
		mq = "connected"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": a.Config.DatabaseDriver,
		"rabbitmq": mq,
	})
}

// StartConsumer logs the order events on the queue until ctx is done. It does nothing when
// RabbitMQ is disabled. The returned channel is closed once the consumer has stopped.
func (a *App) StartConsumer(ctx context.Context) (<-chan struct{}, error) {
	if a.mq == nil {
		done := make(chan struct{})
		close(done)
		return done, nil
	}
	return a.mq.ConsumeOrderEvents(ctx, rabbitmq.LogHandler(a.Logger))
}

// Listen serves HTTP on the configured port until Shutdown is called.
func (a *App) Listen() error {
	a.Logger.Info("starting server", zap.String("addr", a.Config.AppPort))
	return a.Fiber.Listen(a.Config.AppPort)
}

// Shutdown stops the HTTP server and releases the broker and database connections.
func (a *App) Shutdown() error {
	var errs []error
	if a.Fiber != nil {
		if err := a.Fiber.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop HTTP server: %w", err))
		}
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases the broker and database connections.
func (a *App) Close() error {
	var errs []error
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
		a.mq = nil
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database: %w", err))
			}
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
