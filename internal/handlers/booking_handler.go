package handlers

import (
	"context"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/services"
	"github.com/gofiber/fiber/v2"
)

type bookingLedger interface {
	CreateBooking(ctx context.Context, ownerID string, input services.CreateBookingInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, requesterID string, now time.Time) (*services.CancellationOutcome, error)
	GetBooking(ctx context.Context, bookingID string, actor services.Actor) (*models.Booking, error)
	ListBookings(ctx context.Context, actor services.Actor) ([]models.BookingDetail, error)
}

type BookingHandler struct {
	ledger bookingLedger
	now    func() time.Time
}

func NewBookingHandler(ledger bookingLedger) *BookingHandler {
	return &BookingHandler{ledger: ledger, now: time.Now}
}

type createBookingRequest struct {
	WalkerID    string  `json:"walker_id"`
	DogID       string  `json:"dog_id"`
	ServiceType string  `json:"service_type"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Duration    int     `json:"duration"`
	Amount      float64 `json:"amount"`
	Location    *string `json:"location"`
	Notes       *string `json:"notes"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	booking, err := h.ledger.CreateBooking(c.Context(), actor.UserID, services.CreateBookingInput{
		WalkerID:    req.WalkerID,
		DogID:       req.DogID,
		ServiceType: req.ServiceType,
		Date:        req.Date,
		Time:        req.Time,
		Duration:    req.Duration,
		Amount:      req.Amount,
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	bookings, err := h.ledger.ListBookings(c.Context(), actor)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(bookings)
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	booking, err := h.ledger.GetBooking(c.Context(), c.Params("id"), actor)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(booking)
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return unauthorized(c)
	}

	outcome, err := h.ledger.CancelBooking(c.Context(), c.Params("id"), actor.UserID, h.now())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":             "Booking cancelled",
		"refund_amount":       outcome.RefundAmount,
		"refund_description":  outcome.Description,
		"hours_until_booking": outcome.HoursUntilBooking,
	})
}
