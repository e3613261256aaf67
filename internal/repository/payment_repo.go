package repository

import (
	"context"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/google/uuid"
)

const paymentColumns = `id, session_id, booking_id, user_id, amount, currency, payment_status, status, metadata, created_at`

type CreatePaymentInput struct {
	SessionID string
	BookingID string
	UserID    string
	Amount    float64
	Currency  string
	Metadata  map[string]string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.PaymentTransaction, error) {
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	query := `
		INSERT INTO payment_transactions (id, session_id, booking_id, user_id, amount, currency, payment_status, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', 'initiated', $7)
		RETURNING ` + paymentColumns

	return scanPayment(r.db.QueryRow(
		ctx,
		query,
		uuid.NewString(),
		input.SessionID,
		input.BookingID,
		input.UserID,
		input.Amount,
		input.Currency,
		metadata,
	))
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE session_id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, sessionID))
}

func (r *PaymentRepository) GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE session_id = $1 FOR UPDATE`
	return scanPayment(r.db.QueryRow(ctx, query, sessionID))
}

func (r *PaymentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	transactionID string,
	current models.PaymentStatus,
	next models.PaymentStatus,
	status models.TransactionStatus,
) (*models.PaymentTransaction, error) {
	query := `
		UPDATE payment_transactions
		SET payment_status = $3, status = $4
		WHERE id = $1 AND payment_status = $2
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query, transactionID, current, next, status))
}

func scanPayment(row rowScanner) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := row.Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.BookingID,
		&payment.UserID,
		&payment.Amount,
		&payment.Currency,
		&payment.PaymentStatus,
		&payment.Status,
		&payment.Metadata,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
