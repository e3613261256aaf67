package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type paymentReconciler interface {
	InitiateCheckout(ctx context.Context, bookingID string, requesterID string, originURL string) (*services.CheckoutResult, error)
	PollCheckoutStatus(ctx context.Context, sessionID string, requesterID string) (*services.CheckoutStatus, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*services.ReconcileResult, error)
}

type PaymentHandler struct {
	payments paymentReconciler
	logger   *slog.Logger
}

func NewPaymentHandler(payments paymentReconciler, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{payments: payments, logger: logger}
}

type checkoutRequest struct {
	BookingID string `json:"booking_id"`
	OriginURL string `json:"origin_url"`
}

func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.BookingID == "" {
		return badRequest(c, "booking_id is required")
	}

	result, err := h.payments.InitiateCheckout(c.Context(), req.BookingID, actor.UserID, req.OriginURL)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

func (h *PaymentHandler) CheckoutStatus(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	status, err := h.payments.PollCheckoutStatus(c.Context(), c.Params("sessionId"), actor.UserID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(status)
}

// StripeWebhook must see the raw body: the signature covers the exact bytes.
func (h *PaymentHandler) StripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)

	result, err := h.payments.HandleWebhook(c.Context(), payload, c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrSignatureInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
		}
		h.logger.Error("webhook reconciliation failed", "error", err)
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"received": true, "outcome": result.Outcome})
}
