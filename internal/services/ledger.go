package services

import (
	"context"
	"log/slog"

	"github.com/Soniti94/paseoslugo/internal/events"
	"github.com/Soniti94/paseoslugo/internal/models"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/Soniti94/paseoslugo/internal/services")

// bookingTransitions is the only place booking status moves are allowed.
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPendingPayment: {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:      {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress:     {models.BookingCompleted},
}

var walkTransitions = map[models.WalkStatus][]models.WalkStatus{
	models.WalkPending:    {models.WalkInProgress},
	models.WalkInProgress: {models.WalkCompleted},
}

func CanTransitionBooking(from, to models.BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionWalk(from, to models.WalkStatus) bool {
	for _, next := range walkTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of a ledger operation.
type Actor struct {
	UserID string
	Role   string
}

type walkerReader interface {
	GetByID(ctx context.Context, walkerID string) (*models.Walker, error)
	GetByUserID(ctx context.Context, userID string) (*models.Walker, error)
}

type dogReader interface {
	GetByID(ctx context.Context, dogID string) (*models.Dog, error)
}

// publish runs after commit; a broker failure never undoes ledger state.
func publish(ctx context.Context, publisher events.Publisher, logger *slog.Logger, key string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, key, payload); err != nil && logger != nil {
		logger.Warn("publish event failed", "event", key, "error", err)
	}
}
