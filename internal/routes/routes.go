package routes

import (
	"errors"
	"log/slog"

	"github.com/Soniti94/paseoslugo/internal/config"
	"github.com/Soniti94/paseoslugo/internal/events"
	"github.com/Soniti94/paseoslugo/internal/handlers"
	"github.com/Soniti94/paseoslugo/internal/middleware"
	"github.com/Soniti94/paseoslugo/internal/payments"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the process-wide resources owned by main.
type Deps struct {
	DB        *pgxpool.Pool
	Publisher events.Publisher
	Payments  payments.Provider
	Logger    *slog.Logger
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, deps Deps) error {
	if cfg == nil {
		return errors.New("routes: config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	userRepo := repository.NewUserRepository(deps.DB)
	userSessionRepo := repository.NewUserSessionRepository(deps.DB)
	walkerRepo := repository.NewWalkerRepository(deps.DB)
	dogRepo := repository.NewDogRepository(deps.DB)
	messageRepo := repository.NewMessageRepository(deps.DB)
	store := repository.NewPgStore(deps.DB)

	identityService := services.NewIdentityService(
		userRepo,
		userSessionRepo,
		cfg.JWTSecret,
		cfg.SessionTTL,
		cfg.EmergentAuthURL,
		logger,
	)
	bookingService := services.NewBookingService(store, walkerRepo, dogRepo, publisher, logger)
	if cfg.StorageEnabled() {
		bookingService.WithPhotoUploader(services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey))
	}
	paymentService := services.NewPaymentService(store, deps.Payments, publisher, logger, services.CheckoutOptions{
		Currency:    cfg.PaymentCurrency,
		SuccessPath: cfg.CheckoutSuccessPath,
		CancelPath:  cfg.CheckoutCancelPath,
	})
	matchmakingService := services.NewMatchmakingService(walkerRepo)
	profileService := services.NewProfileService(deps.DB, walkerRepo, dogRepo, userRepo, matchmakingService)
	messageService := services.NewMessageService(messageRepo, userRepo)

	authHandler := handlers.NewAuthHandler(identityService, cfg.SessionTTL, !cfg.IsDevelopment())
	bookingHandler := handlers.NewBookingHandler(bookingService)
	walkHandler := handlers.NewWalkHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	profileHandler := handlers.NewProfileHandler(profileService)
	messageHandler := handlers.NewMessageHandler(messageService)
	configHandler := handlers.NewConfigHandler(cfg.GoogleMapsAPIKey)

	requireAuth := middleware.AuthRequired(identityService)

	api := app.Group("/api")

	api.Get("/config", configHandler.PublicConfig)
	api.Get("/packages", configHandler.Packages)

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/session", authHandler.Session)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Patch("/me", requireAuth, authHandler.UpdateMe)

	walkers := api.Group("/walkers")
	walkers.Get("", profileHandler.ListWalkers)
	walkers.Get("/recommended", requireAuth, profileHandler.RecommendedWalkers)
	walkers.Post("", requireAuth, profileHandler.CreateWalker)
	walkers.Get("/:id", profileHandler.GetWalker)

	dogs := api.Group("/dogs", requireAuth)
	dogs.Get("", profileHandler.ListDogs)
	dogs.Post("", profileHandler.CreateDog)

	bookings := api.Group("/bookings", requireAuth)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Patch("/:id/cancel", bookingHandler.CancelBooking)

	walks := api.Group("/walks", requireAuth)
	walks.Get("/:bookingId", walkHandler.GetWalk)
	walks.Post("/:bookingId/start", walkHandler.StartWalk)
	walks.Post("/:bookingId/update", walkHandler.UpdateWalk)
	walks.Post("/:bookingId/complete", walkHandler.CompleteWalk)
	walks.Post("/:bookingId/photos", walkHandler.AddPhoto)

	messages := api.Group("/messages", requireAuth)
	messages.Get("", messageHandler.ListMessages)
	messages.Post("", messageHandler.SendMessage)
	messages.Get("/unread-count", messageHandler.UnreadCount)
	messages.Patch("/:id/read", messageHandler.MarkRead)

	checkout := api.Group("/payments/checkout", requireAuth)
	checkout.Post("/session", paymentHandler.CreateCheckoutSession)
	checkout.Get("/status/:sessionId", paymentHandler.CheckoutStatus)

	// Provider callbacks authenticate by signature, not by session.
	api.Post("/webhook/stripe", paymentHandler.StripeWebhook)

	return nil
}
