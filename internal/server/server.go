// Package server wires configuration, storage, services and HTTP routes into
// a runnable Fiber application.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"watchstore/internal/config"
	"watchstore/internal/handlers"
	"watchstore/internal/middleware"
	"watchstore/internal/notify"
	"watchstore/internal/services"
	"watchstore/internal/storage"
	"watchstore/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// bodyLimit leaves room for a full-size image plus multipart framing.
const bodyLimit = handlers.MaxImageSize + 1<<20

// Server is the assembled application.
type Server struct {
	App    *fiber.App
	DB     *gorm.DB         // nil with the memory driver
	MQ     *rabbitmq.Client // nil when order events are disabled
	Mailer notify.Mailer
}

// New builds the application described by cfg.
func New(cfg config.Config) (*Server, error) {
	decimal.MarshalJSONWithoutQuotes = true

	repos, db, err := openRepositories(cfg)
	if err != nil {
		return nil, err
	}

	images, err := openImageStore(cfg)
	if err != nil {
		return nil, err
	}

	mailer := notify.New(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.EmailFrom,
	})

	// A nil *rabbitmq.Client must not end up inside the interface.
	var publisher services.EventPublisher
	var mq *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, order events disabled: %v", err)
			mq = nil
		} else {
			publisher = mq
		}
	}

	authService := services.NewAuthService(repos.users, cfg.JWTSecret, cfg.JWTTTL)
	productService := services.NewProductService(repos.products, images)
	cartService := services.NewCartService(repos.carts, repos.products)
	orderService := services.NewOrderService(repos.orders, repos.users, cartService, publisher)
	newsletterService := services.NewNewsletterService(repos.newsletter, mailer)

	if cfg.SeedOnStart {
		if err := seedCatalog(repos.products); err != nil {
			return nil, err
		}
		if err := seedAdmin(authService, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		mqStatus := "disabled"
		if mq != nil {
			mqStatus = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": mqStatus,
		})
	})

	api := app.Group("/api")
	auth := middleware.AuthRequired(authService)
	admin := middleware.AdminRequired()
	limit := rateLimiter(cfg.RateLimitPerMinute)

	handlers.NewProductHandler(productService).RegisterRoutes(api, auth, admin)
	handlers.NewAuthHandler(authService).RegisterRoutes(api, auth, limit)
	handlers.NewCartHandler(cartService).RegisterRoutes(api, auth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, auth, admin)
	handlers.NewNewsletterHandler(newsletterService).RegisterRoutes(api, auth, admin, limit)

	if local, ok := images.(*storage.LocalStore); ok {
		app.Static("/uploads", local.Dir())
	}
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	return &Server{App: app, DB: db, MQ: mq, Mailer: mailer}, nil
}

func openImageStore(cfg config.Config) (storage.ImageStore, error) {
	switch cfg.UploadDriver {
	case "", "local":
		return storage.NewLocalStore(cfg.UploadDir)
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown UPLOAD_DRIVER %q", cfg.UploadDriver)
	}
}

// rateLimiter returns nil when limiting is disabled.
func rateLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return nil
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later",
			})
		},
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// StartConsumer runs the order event consumer when RabbitMQ is connected.
func (s *Server) StartConsumer() error {
	if s.MQ == nil {
		return nil
	}
	log.Println("Starting RabbitMQ consumer for orders...")
	return s.MQ.ConsumeOrderEvents(OrderEventHandler(s.Mailer))
}

// Shutdown stops the HTTP server and releases the broker and database.
func (s *Server) Shutdown() error {
	var errs []error
	if err := s.App.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if s.MQ != nil {
		if err := s.MQ.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
