package payments

import (
	"context"
	"errors"

	"github.com/Soniti94/paseoslugo/internal/models"
)

var ErrSignatureInvalid = errors.New("invalid webhook signature")

type CheckoutRequest struct {
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

type SessionStatus struct {
	Status        string
	PaymentStatus models.PaymentStatus
	AmountTotal   int64
	Currency      string
}

// WebhookEvent is the verified subset of a provider notification the
// reconciliation flow needs. SessionID is empty for events it ignores.
type WebhookEvent struct {
	ID            string
	Type          string
	SessionID     string
	PaymentStatus models.PaymentStatus
}

type Provider interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

// ToCents converts a 2dp currency amount to minor units.
func ToCents(amount float64) int64 {
	if amount >= 0 {
		return int64(amount*100 + 0.5)
	}
	return int64(amount*100 - 0.5)
}
