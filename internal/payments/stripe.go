package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(apiKey, webhookSecret string, timeout time.Duration) *StripeProvider {
	httpClient := &http.Client{Timeout: timeout}
	return &StripeProvider{
		api:           client.New(apiKey, stripe.NewBackends(httpClient)),
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.AmountCents <= 0 {
		return nil, errors.New("checkout amount must be positive")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (p *StripeProvider) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session: %w", err)
	}
	return &SessionStatus{
		Status:        string(session.Status),
		PaymentStatus: mapCheckoutSession(session.Status, session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
	}, nil
}

func (p *StripeProvider) VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if p.webhookSecret == "" || signatureHeader == "" {
		return nil, ErrSignatureInvalid
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	result := &WebhookEvent{ID: event.ID, Type: string(event.Type)}

	var observed models.PaymentStatus
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		observed = ""
	case "checkout.session.async_payment_failed":
		observed = models.PaymentFailed
	case "checkout.session.expired":
		observed = models.PaymentExpired
	default:
		return result, nil
	}

	if event.Data == nil {
		return result, nil
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session event: %w", err)
	}
	if observed == "" {
		observed = mapCheckoutSession(session.Status, session.PaymentStatus)
	}

	result.SessionID = session.ID
	result.PaymentStatus = observed
	return result, nil
}

func mapCheckoutSession(status stripe.CheckoutSessionStatus, paymentStatus stripe.CheckoutSessionPaymentStatus) models.PaymentStatus {
	switch {
	case paymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		paymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return models.PaymentPaid
	case status == stripe.CheckoutSessionStatusExpired:
		return models.PaymentExpired
	default:
		return models.PaymentPending
	}
}
