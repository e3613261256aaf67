package repository

import (
	"context"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/google/uuid"
)

const bookingColumns = `id, owner_id, walker_id, dog_id, service_type, date, time, duration, status,
	amount, location, notes, cancelled_at, refund_amount, refund_description, created_at`

type CreateBookingInput struct {
	OwnerID     string
	WalkerID    string
	DogID       string
	ServiceType models.ServiceType
	Date        string
	Time        string
	Duration    int
	Amount      float64
	Location    *string
	Notes       *string
}

type CancelBookingInput struct {
	CancelledAt       time.Time
	RefundAmount      float64
	RefundDescription string
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (id, owner_id, walker_id, dog_id, service_type, date, time, duration, status, amount, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending_payment', $9, $10, $11)
		RETURNING ` + bookingColumns

	return scanBooking(r.db.QueryRow(
		ctx,
		query,
		uuid.NewString(),
		input.OwnerID,
		input.WalkerID,
		input.DogID,
		input.ServiceType,
		input.Date,
		input.Time,
		input.Duration,
		input.Amount,
		input.Location,
		input.Notes,
	))
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.BookingDetail, error) {
	return r.listWhere(ctx, "b.owner_id = $1", ownerID)
}

func (r *BookingRepository) ListByWalker(ctx context.Context, walkerID string) ([]models.BookingDetail, error) {
	return r.listWhere(ctx, "b.walker_id = $1", walkerID)
}

func (r *BookingRepository) listWhere(ctx context.Context, where string, arg string) ([]models.BookingDetail, error) {
	query := `
		SELECT b.id, b.owner_id, b.walker_id, b.dog_id, b.service_type, b.date, b.time, b.duration, b.status,
			   b.amount, b.location, b.notes, b.cancelled_at, b.refund_amount, b.refund_description, b.created_at,
			   u.name, d.name
		FROM bookings b
		LEFT JOIN walkers w ON w.id = b.walker_id
		LEFT JOIN users u ON u.id = w.user_id
		LEFT JOIN dogs d ON d.id = b.dog_id
		WHERE ` + where + `
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT 100
	`

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.BookingDetail, 0)
	for rows.Next() {
		var detail models.BookingDetail
		b := &detail.Booking
		if err := rows.Scan(
			&b.ID,
			&b.OwnerID,
			&b.WalkerID,
			&b.DogID,
			&b.ServiceType,
			&b.Date,
			&b.Time,
			&b.Duration,
			&b.Status,
			&b.Amount,
			&b.Location,
			&b.Notes,
			&b.CancelledAt,
			&b.RefundAmount,
			&b.RefundDescription,
			&b.CreatedAt,
			&detail.WalkerName,
			&detail.DogName,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID string,
	current models.BookingStatus,
	next models.BookingStatus,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, current, next))
}

func (r *BookingRepository) CancelIfCurrent(
	ctx context.Context,
	bookingID string,
	current models.BookingStatus,
	input CancelBookingInput,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled',
			cancelled_at = $3,
			refund_amount = $4,
			refund_description = $5
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns
	return scanBooking(r.db.QueryRow(
		ctx,
		query,
		bookingID,
		current,
		input.CancelledAt,
		input.RefundAmount,
		input.RefundDescription,
	))
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.WalkerID,
		&b.DogID,
		&b.ServiceType,
		&b.Date,
		&b.Time,
		&b.Duration,
		&b.Status,
		&b.Amount,
		&b.Location,
		&b.Notes,
		&b.CancelledAt,
		&b.RefundAmount,
		&b.RefundDescription,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
