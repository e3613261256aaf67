package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// BookingStore persists bookings. Conditional updates return pgx.ErrNoRows
// when the row is absent or not in the expected status.
type BookingStore interface {
	Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	GetByIDForUpdate(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.BookingDetail, error)
	ListByWalker(ctx context.Context, walkerID string) ([]models.BookingDetail, error)
	UpdateStatusIfCurrent(ctx context.Context, bookingID string, current, next models.BookingStatus) (*models.Booking, error)
	CancelIfCurrent(ctx context.Context, bookingID string, current models.BookingStatus, input CancelBookingInput) (*models.Booking, error)
}

type WalkStore interface {
	GetOrCreate(ctx context.Context, bookingID string) (*models.Walk, error)
	StartIfCurrent(ctx context.Context, bookingID string, current models.WalkStatus, startedAt time.Time) (*models.Walk, error)
	AppendRoutePoint(ctx context.Context, bookingID string, point models.RoutePoint) (*models.Walk, error)
	AppendPhoto(ctx context.Context, bookingID string, photo string) (*models.Walk, error)
	SetReport(ctx context.Context, bookingID string, report string) (*models.Walk, error)
	CompleteIfCurrent(ctx context.Context, bookingID string, current models.WalkStatus, input CompleteWalkInput) (*models.Walk, error)
}

type PaymentStore interface {
	Create(ctx context.Context, input CreatePaymentInput) (*models.PaymentTransaction, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	UpdateStatusIfCurrent(ctx context.Context, transactionID string, current models.PaymentStatus, next models.PaymentStatus, status models.TransactionStatus) (*models.PaymentTransaction, error)
}

// Repos groups the ledger repositories bound to one connection or transaction.
type Repos struct {
	Bookings BookingStore
	Walks    WalkStore
	Payments PaymentStore
}

type Store interface {
	Repos() Repos
	RunInTx(ctx context.Context, fn func(Repos) error) error
}

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Repos() Repos {
	return newRepos(s.pool)
}

func (s *PgStore) RunInTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func newRepos(db DBTX) Repos {
	return Repos{
		Bookings: NewBookingRepository(db),
		Walks:    NewWalkRepository(db),
		Payments: NewPaymentRepository(db),
	}
}
