package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/google/uuid"
)

const walkColumns = `id, booking_id, start_time, end_time, route_data, photos, report_text, status, created_at`

type CompleteWalkInput struct {
	EndedAt time.Time
	Photo   *string
	Report  *string
}

// WalkRepository stores one walk per booking. Every write is an upsert keyed
// on the unique booking_id so the row is created on first touch.
type WalkRepository struct {
	db DBTX
}

func NewWalkRepository(db DBTX) *WalkRepository {
	return &WalkRepository{db: db}
}

func (r *WalkRepository) GetOrCreate(ctx context.Context, bookingID string) (*models.Walk, error) {
	query := `
		INSERT INTO walks (id, booking_id)
		VALUES ($1, $2)
		ON CONFLICT (booking_id) DO UPDATE SET booking_id = EXCLUDED.booking_id
		RETURNING ` + walkColumns
	return scanWalk(r.db.QueryRow(ctx, query, uuid.NewString(), bookingID))
}

func (r *WalkRepository) StartIfCurrent(
	ctx context.Context,
	bookingID string,
	current models.WalkStatus,
	startedAt time.Time,
) (*models.Walk, error) {
	query := `
		UPDATE walks
		SET status = 'in_progress', start_time = $3
		WHERE booking_id = $1 AND status = $2
		RETURNING ` + walkColumns
	return scanWalk(r.db.QueryRow(ctx, query, bookingID, current, startedAt))
}

func (r *WalkRepository) AppendRoutePoint(
	ctx context.Context,
	bookingID string,
	point models.RoutePoint,
) (*models.Walk, error) {
	encoded, err := json.Marshal(point)
	if err != nil {
		return nil, fmt.Errorf("encode route point: %w", err)
	}

	query := `
		INSERT INTO walks (id, booking_id, route_data)
		VALUES ($1, $2, jsonb_build_array($3::jsonb))
		ON CONFLICT (booking_id) DO UPDATE SET route_data = walks.route_data || EXCLUDED.route_data
		RETURNING ` + walkColumns
	return scanWalk(r.db.QueryRow(ctx, query, uuid.NewString(), bookingID, string(encoded)))
}

func (r *WalkRepository) AppendPhoto(ctx context.Context, bookingID string, photo string) (*models.Walk, error) {
	query := `
		INSERT INTO walks (id, booking_id, photos)
		VALUES ($1, $2, ARRAY[$3::text])
		ON CONFLICT (booking_id) DO UPDATE SET photos = array_append(walks.photos, $3::text)
		RETURNING ` + walkColumns
	return scanWalk(r.db.QueryRow(ctx, query, uuid.NewString(), bookingID, photo))
}

func (r *WalkRepository) SetReport(ctx context.Context, bookingID string, report string) (*models.Walk, error) {
	query := `
		INSERT INTO walks (id, booking_id, report_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (booking_id) DO UPDATE SET report_text = EXCLUDED.report_text
		RETURNING ` + walkColumns
	return scanWalk(r.db.QueryRow(ctx, query, uuid.NewString(), bookingID, report))
}

func (r *WalkRepository) CompleteIfCurrent(
	ctx context.Context,
	bookingID string,
	current models.WalkStatus,
	input CompleteWalkInput,
) (*models.Walk, error) {
	query := `
		UPDATE walks
		SET status = 'completed',
			end_time = $3,
			photos = CASE WHEN $4::text IS NULL THEN photos ELSE array_append(photos, $4::text) END,
			report_text = COALESCE($5::text, report_text)
		WHERE booking_id = $1 AND status = $2
		RETURNING ` + walkColumns
	return scanWalk(r.db.QueryRow(ctx, query, bookingID, current, input.EndedAt, input.Photo, input.Report))
}

func scanWalk(row rowScanner) (*models.Walk, error) {
	var walk models.Walk
	err := row.Scan(
		&walk.ID,
		&walk.BookingID,
		&walk.StartTime,
		&walk.EndTime,
		&walk.RouteData,
		&walk.Photos,
		&walk.ReportText,
		&walk.Status,
		&walk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if walk.RouteData == nil {
		walk.RouteData = []models.RoutePoint{}
	}
	if walk.Photos == nil {
		walk.Photos = []string{}
	}
	return &walk, nil
}
