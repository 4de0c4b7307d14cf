package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lelang/internal/config"
	"lelang/internal/database"
	"lelang/internal/handlers"
	"lelang/internal/lock"
	"lelang/internal/middleware"
	"lelang/internal/repositories"
	"lelang/internal/services"
	"lelang/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

// App is the wired HTTP application and the resources it owns.
type App struct {
	Fiber   *fiber.App
	closers []func() error
	logger  zerolog.Logger
}

// NewApp wires stores, locks, the event broker, services and routes
// from cfg. Call Close once the server has stopped.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{logger: logger}

	// --- Stores ---
	var (
		auctionRepo repositories.AuctionRepository
		userRepo    repositories.UserRepository
		db          *gorm.DB
	)
	if cfg.Database.Driver == config.DriverMemory {
		auctionRepo = repositories.NewMockAuctionRepository()
		userRepo = repositories.NewMockUserRepository()
		logger.Warn().Msg("Using in-memory store, data is lost on restart")
	} else {
		var err error
		db, err = database.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		auctionRepo = repositories.NewGORMAuctionRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
		logger.Info().Str("driver", cfg.Database.Driver).Msg("Database connected")
	}

	// --- Per-auction lock ---
	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Lock.Driver == config.LockRedis {
		client := lock.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := lock.PingRedis(ctx, client)
		cancel()
		if err != nil {
			client.Close()
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		locker = lock.NewRedisLocker(lock.RedisLockerParams{
			Client: client,
			TTL:    cfg.Lock.TTL,
			Logger: logger,
		})
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis auction lock")
	}

	// --- Events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Logger: logger})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, mqClient.Close)
		if err := mqClient.ConsumeAuctionEvents(auditEvent(logger)); err != nil {
			a.Close()
			return nil, err
		}
		publisher = mqClient
	} else {
		logger.Info().Msg("RABBITMQ_URL not set, auction events are not published")
	}

	// --- Services ---
	authService := services.NewAuthService(services.AuthServiceParams{
		UserRepo:  userRepo,
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		Logger:    logger,
	})
	auctionService := services.NewAuctionService(services.AuctionServiceParams{
		AuctionRepo: auctionRepo,
		Users:       authService,
		Locker:      locker,
		Publisher:   publisher,
		Logger:      logger,
	})
	biddingService := services.NewBiddingService(services.BiddingServiceParams{
		AuctionRepo: auctionRepo,
		Locker:      locker,
		Publisher:   publisher,
		Logger:      logger,
	})

	// --- HTTP ---
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.App.BodyLimit,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CORSAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(fiberlogger.New())

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(apiV1)
	handlers.NewAuctionHandler(auctionService, biddingService, logger).
		RegisterRoutes(apiV1, middleware.AuthRequired(authService, logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  cfg.Database.Driver,
			"events": publisher != nil,
		}
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.UserContext())
			}
			if err != nil {
				status["status"] = "unhealthy"
				status["error"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(status)
			}
		}
		return c.JSON(status)
	})

	a.Fiber = app
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("failed to close application resources: %w", errors.Join(errs...))
	}
	return nil
}

// auditEvent logs every auction event read back from the broker.
func auditEvent(logger zerolog.Logger) func(msg amqp.Delivery) error {
	logger = logger.With().Str("component", "event_audit").Logger()
	return func(msg amqp.Delivery) error {
		logger.Info().
			Str("routing_key", msg.RoutingKey).
			RawJSON("event", msg.Body).
			Msg("Auction event")
		return nil
	}
}
