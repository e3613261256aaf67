package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
	PaymentExpired PaymentStatus = "expired"
)

type TransactionStatus string

const (
	TransactionInitiated TransactionStatus = "initiated"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type PaymentTransaction struct {
	ID            string            `json:"id"`
	SessionID     string            `json:"session_id"`
	BookingID     string            `json:"booking_id"`
	UserID        string            `json:"user_id"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	Status        TransactionStatus `json:"status"`
	Metadata      map[string]string `json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
}
