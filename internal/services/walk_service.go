package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Soniti94/paseoslugo/internal/events"
	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type photoUploader interface {
	UploadWalkPhoto(ctx context.Context, bookingID string, photo string) (string, error)
}

type UpdateWalkInput struct {
	RoutePoint *models.RoutePoint
	ReportText *string
}

type CompleteWalkInput struct {
	Photo  *string
	Report *string
}

// GetWalk returns the walk for a booking, creating it on first access.
func (s *BookingService) GetWalk(ctx context.Context, bookingID string, actor Actor) (*models.Walk, error) {
	if _, err := s.GetBooking(ctx, bookingID, actor); err != nil {
		return nil, err
	}
	return s.store.Repos().Walks.GetOrCreate(ctx, bookingID)
}

func (s *BookingService) StartWalk(ctx context.Context, bookingID string, actor Actor, now time.Time) (*models.Walk, error) {
	ctx, span := tracer.Start(ctx, "ledger.StartWalk", trace.WithAttributes(attribute.String("booking.id", bookingID)))
	defer span.End()

	var walk *models.Walk
	err := s.store.RunInTx(ctx, func(repos repository.Repos) error {
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := s.ensureParticipant(ctx, booking, actor); err != nil {
			return err
		}
		if !CanTransitionBooking(booking.Status, models.BookingInProgress) {
			return ErrInvalidState
		}

		current, err := repos.Walks.GetOrCreate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !CanTransitionWalk(current.Status, models.WalkInProgress) {
			return ErrInvalidState
		}
		walk, err = repos.Walks.StartIfCurrent(ctx, bookingID, current.Status, now.UTC())
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidState
			}
			return err
		}

		if _, err := repos.Bookings.UpdateStatusIfCurrent(ctx, bookingID, booking.Status, models.BookingInProgress); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidState
			}
			return err
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.logger.Info("walk started", "booking_id", bookingID, "actor_id", actor.UserID)
	publish(ctx, s.publisher, s.logger, events.WalkStarted, map[string]any{
		"booking_id": bookingID,
		"walk_id":    walk.ID,
		"start_time": walk.StartTime,
	})
	return walk, nil
}

// AppendRoutePoint only requires the walk to exist; it is created if absent.
func (s *BookingService) AppendRoutePoint(
	ctx context.Context,
	bookingID string,
	actor Actor,
	point models.RoutePoint,
) (*models.Walk, error) {
	if _, err := s.GetBooking(ctx, bookingID, actor); err != nil {
		return nil, err
	}
	return s.store.Repos().Walks.AppendRoutePoint(ctx, bookingID, point)
}

func (s *BookingService) UpdateWalk(
	ctx context.Context,
	bookingID string,
	actor Actor,
	input UpdateWalkInput,
) (*models.Walk, error) {
	reportText := nonBlank(input.ReportText)
	if input.RoutePoint == nil && reportText == nil {
		return nil, ErrInvalidInput
	}
	if _, err := s.GetBooking(ctx, bookingID, actor); err != nil {
		return nil, err
	}

	var walk *models.Walk
	err := s.store.RunInTx(ctx, func(repos repository.Repos) error {
		var err error
		if input.RoutePoint != nil {
			if walk, err = repos.Walks.AppendRoutePoint(ctx, bookingID, *input.RoutePoint); err != nil {
				return err
			}
		}
		if reportText != nil {
			if walk, err = repos.Walks.SetReport(ctx, bookingID, *reportText); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return walk, nil
}

func (s *BookingService) AddWalkPhoto(ctx context.Context, bookingID string, actor Actor, photo string) (*models.Walk, error) {
	if strings.TrimSpace(photo) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.GetBooking(ctx, bookingID, actor); err != nil {
		return nil, err
	}

	ref, err := s.storePhoto(ctx, bookingID, photo)
	if err != nil {
		return nil, err
	}
	return s.store.Repos().Walks.AppendPhoto(ctx, bookingID, ref)
}

// CompleteWalk requires the walk to be in progress; completing from any
// other state is rejected.
func (s *BookingService) CompleteWalk(
	ctx context.Context,
	bookingID string,
	actor Actor,
	now time.Time,
	input CompleteWalkInput,
) (*models.Walk, error) {
	ctx, span := tracer.Start(ctx, "ledger.CompleteWalk", trace.WithAttributes(attribute.String("booking.id", bookingID)))
	defer span.End()

	photo := nonBlank(input.Photo)
	report := nonBlank(input.Report)
	if photo != nil {
		if _, err := s.GetBooking(ctx, bookingID, actor); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		ref, err := s.storePhoto(ctx, bookingID, *photo)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		photo = &ref
	}

	var walk *models.Walk
	err := s.store.RunInTx(ctx, func(repos repository.Repos) error {
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundOr(err)
		}
		if err := s.ensureParticipant(ctx, booking, actor); err != nil {
			return err
		}
		if !CanTransitionBooking(booking.Status, models.BookingCompleted) {
			return ErrInvalidState
		}

		current, err := repos.Walks.GetOrCreate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !CanTransitionWalk(current.Status, models.WalkCompleted) {
			return ErrInvalidState
		}
		walk, err = repos.Walks.CompleteIfCurrent(ctx, bookingID, current.Status, repository.CompleteWalkInput{
			EndedAt: now.UTC(),
			Photo:   photo,
			Report:  report,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidState
			}
			return err
		}

		if _, err := repos.Bookings.UpdateStatusIfCurrent(ctx, bookingID, booking.Status, models.BookingCompleted); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidState
			}
			return err
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.logger.Info("walk completed", "booking_id", bookingID, "route_points", len(walk.RouteData), "photos", len(walk.Photos))
	publish(ctx, s.publisher, s.logger, events.WalkCompleted, map[string]any{
		"booking_id": bookingID,
		"walk_id":    walk.ID,
		"end_time":   walk.EndTime,
	})
	return walk, nil
}

func (s *BookingService) storePhoto(ctx context.Context, bookingID string, photo string) (string, error) {
	if s.photos == nil || !strings.HasPrefix(photo, "data:") {
		return photo, nil
	}
	ref, err := s.photos.UploadWalkPhoto(ctx, bookingID, photo)
	if err != nil {
		return "", err
	}
	return ref, nil
}

// nonBlank treats an empty or whitespace-only value as not provided.
func nonBlank(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}
