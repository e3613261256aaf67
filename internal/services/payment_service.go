package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Soniti94/paseoslugo/internal/events"
	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/payments"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ReconcileOutcome string

const (
	// ReconcileApplied means this call moved the transaction to a new status.
	ReconcileApplied ReconcileOutcome = "applied"
	// ReconcileAlreadyProcessed means the transaction was already paid.
	ReconcileAlreadyProcessed ReconcileOutcome = "already_processed"
	ReconcileNoChange         ReconcileOutcome = "no_change"
	ReconcileIgnored          ReconcileOutcome = "ignored"
)

type ReconcileResult struct {
	Outcome          ReconcileOutcome           `json:"outcome"`
	Transaction      *models.PaymentTransaction `json:"transaction,omitempty"`
	BookingConfirmed bool                       `json:"booking_confirmed"`
}

type CheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type CheckoutStatus struct {
	Status           string               `json:"status"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	AmountTotal      int64                `json:"amount_total,omitempty"`
	Currency         string               `json:"currency,omitempty"`
	AlreadyProcessed bool                 `json:"already_processed,omitempty"`
}

type CheckoutOptions struct {
	Currency    string
	SuccessPath string
	CancelPath  string
}

type PaymentService struct {
	store     repository.Store
	provider  payments.Provider
	publisher events.Publisher
	logger    *slog.Logger
	opts      CheckoutOptions
}

func NewPaymentService(
	store repository.Store,
	provider payments.Provider,
	publisher events.Publisher,
	logger *slog.Logger,
	opts CheckoutOptions,
) *PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Currency == "" {
		opts.Currency = "eur"
	}
	if opts.SuccessPath == "" {
		opts.SuccessPath = "/pago-exitoso"
	}
	if opts.CancelPath == "" {
		opts.CancelPath = "/reservar"
	}
	return &PaymentService{
		store:     store,
		provider:  provider,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// InitiateCheckout opens a provider session for a pending booking. Every call
// records a new transaction so an abandoned checkout can be retried.
func (s *PaymentService) InitiateCheckout(
	ctx context.Context,
	bookingID string,
	requesterID string,
	originURL string,
) (*CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "payments.InitiateCheckout", trace.WithAttributes(attribute.String("booking.id", bookingID)))
	defer span.End()

	origin, err := normalizeOrigin(originURL)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	booking, err := repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if booking.OwnerID != requesterID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingPendingPayment {
		return nil, ErrInvalidState
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no payment provider configured", ErrUpstream)
	}

	metadata := map[string]string{
		"booking_id": booking.ID,
		"user_id":    requesterID,
	}
	session, err := s.provider.CreateSession(ctx, payments.CheckoutRequest{
		AmountCents: payments.ToCents(booking.Amount),
		Currency:    s.opts.Currency,
		ProductName: fmt.Sprintf("Paseo %s", booking.ServiceType),
		SuccessURL:  origin + s.opts.SuccessPath + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   origin + strings.TrimRight(s.opts.CancelPath, "/") + "/" + url.PathEscape(booking.WalkerID),
		Metadata:    metadata,
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if _, err := repos.Payments.Create(ctx, repository.CreatePaymentInput{
		SessionID: session.SessionID,
		BookingID: booking.ID,
		UserID:    requesterID,
		Amount:    booking.Amount,
		Currency:  s.opts.Currency,
		Metadata:  metadata,
	}); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s.logger.Info("checkout session created", "booking_id", booking.ID, "session_id", session.SessionID)
	return &CheckoutResult{URL: session.URL, SessionID: session.SessionID}, nil
}

// PollCheckoutStatus asks the provider for a session's status and reconciles it.
func (s *PaymentService) PollCheckoutStatus(
	ctx context.Context,
	sessionID string,
	requesterID string,
) (*CheckoutStatus, error) {
	transaction, err := s.store.Repos().Payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if transaction.UserID != requesterID {
		return nil, ErrForbidden
	}
	if transaction.PaymentStatus == models.PaymentPaid {
		return &CheckoutStatus{
			Status:           "complete",
			PaymentStatus:    models.PaymentPaid,
			AlreadyProcessed: true,
		}, nil
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no payment provider configured", ErrUpstream)
	}

	status, err := s.provider.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result, err := s.Reconcile(ctx, sessionID, status.PaymentStatus)
	if err != nil {
		return nil, err
	}
	return &CheckoutStatus{
		Status:           status.Status,
		PaymentStatus:    status.PaymentStatus,
		AmountTotal:      status.AmountTotal,
		Currency:         status.Currency,
		AlreadyProcessed: result.Outcome == ReconcileAlreadyProcessed,
	}, nil
}

// HandleWebhook verifies the raw body before trusting anything in it.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*ReconcileResult, error) {
	if s.provider == nil {
		return nil, ErrSignatureInvalid
	}
	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payments.ErrSignatureInvalid) {
			s.logger.Warn("rejected webhook with invalid signature")
			return nil, ErrSignatureInvalid
		}
		return nil, err
	}
	if event.SessionID == "" || event.PaymentStatus == "" {
		s.logger.Debug("ignoring webhook event", "event_id", event.ID, "type", event.Type)
		return &ReconcileResult{Outcome: ReconcileIgnored}, nil
	}

	result, err := s.Reconcile(ctx, event.SessionID, event.PaymentStatus)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("webhook for unknown checkout session", "event_id", event.ID, "session_id", event.SessionID)
		return &ReconcileResult{Outcome: ReconcileIgnored}, nil
	}
	return result, err
}

// Reconcile applies an observed provider status to the local transaction and
// booking. The guard is the transaction's own payment_status, so a second
// call with the same status is a no-op, and a transaction marked paid whose
// booking was left behind is re-driven to confirmed.
func (s *PaymentService) Reconcile(
	ctx context.Context,
	sessionID string,
	observed models.PaymentStatus,
) (*ReconcileResult, error) {
	ctx, span := tracer.Start(ctx, "payments.Reconcile", trace.WithAttributes(
		attribute.String("payment.session_id", sessionID),
		attribute.String("payment.observed", string(observed)),
	))
	defer span.End()

	result := &ReconcileResult{Outcome: ReconcileNoChange}
	err := s.store.RunInTx(ctx, func(repos repository.Repos) error {
		transaction, err := repos.Payments.GetBySessionIDForUpdate(ctx, sessionID)
		if err != nil {
			return notFoundOr(err)
		}
		result.Transaction = transaction

		if transaction.PaymentStatus == models.PaymentPaid {
			result.Outcome = ReconcileAlreadyProcessed
			confirmed, err := s.confirmBooking(ctx, repos, transaction, false)
			result.BookingConfirmed = confirmed
			if confirmed {
				s.logger.Warn("re-drove booking confirmation for paid transaction",
					"session_id", sessionID,
					"booking_id", transaction.BookingID,
				)
			}
			return err
		}

		switch observed {
		case models.PaymentPaid:
			updated, err := repos.Payments.UpdateStatusIfCurrent(
				ctx,
				transaction.ID,
				transaction.PaymentStatus,
				models.PaymentPaid,
				models.TransactionCompleted,
			)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					result.Outcome = ReconcileAlreadyProcessed
					return nil
				}
				return err
			}
			result.Transaction = updated
			result.Outcome = ReconcileApplied

			confirmed, err := s.confirmBooking(ctx, repos, updated, true)
			result.BookingConfirmed = confirmed
			return err
		case models.PaymentFailed, models.PaymentExpired:
			if transaction.PaymentStatus == observed {
				return nil
			}
			updated, err := repos.Payments.UpdateStatusIfCurrent(
				ctx,
				transaction.ID,
				transaction.PaymentStatus,
				observed,
				models.TransactionFailed,
			)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil
				}
				return err
			}
			result.Transaction = updated
			result.Outcome = ReconcileApplied
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.outcome", string(result.Outcome)))
	if result.Outcome == ReconcileApplied {
		tx := result.Transaction
		s.logger.Info("payment reconciled",
			"session_id", sessionID,
			"booking_id", tx.BookingID,
			"payment_status", tx.PaymentStatus,
			"booking_confirmed", result.BookingConfirmed,
		)
		key := events.PaymentPaid
		if tx.PaymentStatus != models.PaymentPaid {
			key = events.PaymentFailed
		}
		publish(ctx, s.publisher, s.logger, key, map[string]any{
			"session_id":     tx.SessionID,
			"booking_id":     tx.BookingID,
			"payment_status": tx.PaymentStatus,
			"amount":         tx.Amount,
			"currency":       tx.Currency,
		})
	}
	if result.BookingConfirmed {
		publish(ctx, s.publisher, s.logger, events.BookingConfirmed, map[string]any{
			"booking_id": result.Transaction.BookingID,
			"session_id": sessionID,
		})
	}
	return result, nil
}

// confirmBooking moves the booking pending_payment -> confirmed. Any other
// current status is left untouched: a late or duplicate payment never moves
// a booking backwards. newPayment marks a transaction that just became paid;
// any that land on a booking no longer awaiting payment are logged.
func (s *PaymentService) confirmBooking(
	ctx context.Context,
	repos repository.Repos,
	transaction *models.PaymentTransaction,
	newPayment bool,
) (bool, error) {
	booking, err := repos.Bookings.GetByIDForUpdate(ctx, transaction.BookingID)
	if err != nil {
		return false, notFoundOr(err)
	}
	if !CanTransitionBooking(booking.Status, models.BookingConfirmed) {
		if newPayment {
			msg := "payment received for booking not awaiting payment"
			if booking.Status == models.BookingCancelled {
				msg = "payment received for cancelled booking"
			}
			s.logger.Warn(msg,
				"booking_id", booking.ID,
				"booking_status", booking.Status,
				"session_id", transaction.SessionID,
				"amount", transaction.Amount,
			)
		}
		return false, nil
	}

	if _, err := repos.Bookings.UpdateStatusIfCurrent(ctx, booking.ID, booking.Status, models.BookingConfirmed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func normalizeOrigin(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil || trimmed == "" || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("%w: origin_url must be an absolute http(s) URL", ErrInvalidInput)
	}
	return trimmed, nil
}
