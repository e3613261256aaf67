package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Soniti94/paseoslugo/internal/config"
	"github.com/Soniti94/paseoslugo/internal/database"
	"github.com/Soniti94/paseoslugo/internal/events"
	"github.com/Soniti94/paseoslugo/internal/obs"
	"github.com/Soniti94/paseoslugo/internal/payments"
	"github.com/Soniti94/paseoslugo/internal/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	pool, err := database.Connect(ctx, cfg.DBUrl, database.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3. Optional integrations
	if cfg.TracingEnabled() {
		shutdownTracer, err := obs.InitTracer(ctx, "paseoslugo", cfg.OTLPEndpoint, cfg.AppEnv)
		if err != nil {
			log.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracer(flushCtx)
			}()
		}
	}

	deps := routes.Deps{DB: pool, Logger: log}
	if cfg.EventsEnabled() {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("event publishing disabled", "error", err)
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
		}
	}
	if cfg.PaymentsEnabled() {
		deps.Payments = payments.NewStripeProvider(cfg.StripeAPIKey, cfg.StripeWebhookSecret, cfg.PaymentProviderTimeout)
	} else {
		log.Warn("STRIPE_API_KEY not set, checkout is unavailable")
	}

	// 4. Setup Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.AllowCredentials(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowMethods:     "GET,POST,PATCH,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(app, cfg, deps); err != nil {
		log.Error("failed to register routes", "error", err)
		os.Exit(1)
	}

	// 5. Start Server
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
