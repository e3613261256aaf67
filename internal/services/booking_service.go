package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/Soniti94/paseoslugo/internal/events"
	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BookingService is the booking ledger: it owns every status write on
// bookings, walks and (through PaymentService) payment transactions.
type BookingService struct {
	store     repository.Store
	walkers   walkerReader
	dogs      dogReader
	photos    photoUploader
	publisher events.Publisher
	logger    *slog.Logger
}

func NewBookingService(
	store repository.Store,
	walkers walkerReader,
	dogs dogReader,
	publisher events.Publisher,
	logger *slog.Logger,
) *BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		store:     store,
		walkers:   walkers,
		dogs:      dogs,
		publisher: publisher,
		logger:    logger,
	}
}

// WithPhotoUploader enables uploading inline walk photos to object storage.
func (s *BookingService) WithPhotoUploader(photos photoUploader) *BookingService {
	s.photos = photos
	return s
}

type CreateBookingInput struct {
	WalkerID    string
	DogID       string
	ServiceType string
	Date        string
	Time        string
	Duration    int
	Amount      float64
	Location    *string
	Notes       *string
}

func (s *BookingService) CreateBooking(
	ctx context.Context,
	ownerID string,
	input CreateBookingInput,
) (*models.Booking, error) {
	ctx, span := tracer.Start(ctx, "ledger.CreateBooking")
	defer span.End()

	walkerID := strings.TrimSpace(input.WalkerID)
	dogID := strings.TrimSpace(input.DogID)
	if ownerID == "" || walkerID == "" || dogID == "" {
		return nil, ErrInvalidInput
	}
	if input.Duration <= 0 || input.Amount <= 0 || math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) {
		return nil, ErrInvalidInput
	}
	serviceType, ok := ParseServiceType(input.ServiceType)
	if !ok {
		return nil, ErrInvalidInput
	}
	if _, err := ParseBookingInstant(input.Date, input.Time); err != nil {
		return nil, err
	}

	if s.walkers != nil {
		if _, err := s.walkers.GetByID(ctx, walkerID); err != nil {
			return nil, fmt.Errorf("walker %s: %w", walkerID, notFoundOr(err))
		}
	}
	if s.dogs != nil {
		dog, err := s.dogs.GetByID(ctx, dogID)
		if err != nil {
			return nil, fmt.Errorf("dog %s: %w", dogID, notFoundOr(err))
		}
		if dog.OwnerID != ownerID {
			return nil, ErrForbidden
		}
	}

	booking, err := s.store.Repos().Bookings.Create(ctx, repository.CreateBookingInput{
		OwnerID:     ownerID,
		WalkerID:    walkerID,
		DogID:       dogID,
		ServiceType: serviceType,
		Date:        strings.TrimSpace(input.Date),
		Time:        strings.TrimSpace(input.Time),
		Duration:    input.Duration,
		Amount:      roundCents(input.Amount),
		Location:    input.Location,
		Notes:       input.Notes,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.id", booking.ID))
	s.logger.Info("booking created", "booking_id", booking.ID, "owner_id", ownerID, "amount", booking.Amount)
	publish(ctx, s.publisher, s.logger, events.BookingCreated, booking)
	return booking, nil
}

func (s *BookingService) CancelBooking(
	ctx context.Context,
	bookingID string,
	requesterID string,
	now time.Time,
) (*CancellationOutcome, error) {
	ctx, span := tracer.Start(ctx, "ledger.CancelBooking", trace.WithAttributes(attribute.String("booking.id", bookingID)))
	defer span.End()

	var (
		outcome   CancellationOutcome
		cancelled *models.Booking
	)
	err := s.store.RunInTx(ctx, func(repos repository.Repos) error {
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundOr(err)
		}
		if booking.OwnerID != requesterID {
			return ErrForbidden
		}
		if !CanTransitionBooking(booking.Status, models.BookingCancelled) {
			return ErrInvalidState
		}

		outcome, err = ComputeCancellation(booking.Date, booking.Time, booking.Amount, now)
		if err != nil {
			return err
		}

		cancelled, err = repos.Bookings.CancelIfCurrent(ctx, booking.ID, booking.Status, repository.CancelBookingInput{
			CancelledAt:       now.UTC(),
			RefundAmount:      outcome.RefundAmount,
			RefundDescription: outcome.Description,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidState
		}
		return err
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.logger.Info("booking cancelled",
		"booking_id", bookingID,
		"refund_amount", outcome.RefundAmount,
		"hours_until_booking", outcome.HoursUntilBooking,
	)
	publish(ctx, s.publisher, s.logger, events.BookingCancelled, map[string]any{
		"booking_id":         cancelled.ID,
		"owner_id":           cancelled.OwnerID,
		"walker_id":          cancelled.WalkerID,
		"refund_amount":      outcome.RefundAmount,
		"refund_description": outcome.Description,
	})
	return &outcome, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if err := s.ensureParticipant(ctx, booking, actor); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, actor Actor) ([]models.BookingDetail, error) {
	bookings := s.store.Repos().Bookings
	if actor.Role == models.RoleWalker && s.walkers != nil {
		walker, err := s.walkers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return []models.BookingDetail{}, nil
			}
			return nil, err
		}
		return bookings.ListByWalker(ctx, walker.ID)
	}
	return bookings.ListByOwner(ctx, actor.UserID)
}

// ensureParticipant allows the booking owner and the user behind the walker profile.
func (s *BookingService) ensureParticipant(ctx context.Context, booking *models.Booking, actor Actor) error {
	if actor.UserID == "" {
		return ErrForbidden
	}
	if booking.OwnerID == actor.UserID {
		return nil
	}
	if s.walkers == nil {
		return ErrForbidden
	}
	walker, err := s.walkers.GetByID(ctx, booking.WalkerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}
	if walker.UserID != actor.UserID {
		return ErrForbidden
	}
	return nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
