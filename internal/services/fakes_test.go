package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Soniti94/paseoslugo/internal/models"
	"github.com/Soniti94/paseoslugo/internal/payments"
	"github.com/Soniti94/paseoslugo/internal/repository"
	"github.com/jackc/pgx/v5"
)

// memStore is an in-memory repository.Store. Transactions are serialized and
// rolled back by restoring a snapshot when fn fails.
type memStore struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	seq      int
	now      time.Time
	bookings map[string]models.Booking
	walks    map[string]models.Walk
	payments map[string]models.PaymentTransaction

	paymentWrites int
}

func newMemStore() *memStore {
	return &memStore{
		now:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		bookings: map[string]models.Booking{},
		walks:    map[string]models.Walk{},
		payments: map[string]models.PaymentTransaction{},
	}
}

func (s *memStore) Repos() repository.Repos {
	return repository.Repos{
		Bookings: memBookings{s},
		Walks:    memWalks{s},
		Payments: memPayments{s},
	}
}

func (s *memStore) RunInTx(ctx context.Context, fn func(repository.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	bookings := make(map[string]models.Booking, len(s.bookings))
	for id, booking := range s.bookings {
		bookings[id] = booking
	}
	walks := make(map[string]models.Walk, len(s.walks))
	for id, walk := range s.walks {
		walks[id] = copyWalk(walk)
	}
	payments := make(map[string]models.PaymentTransaction, len(s.payments))
	for id, transaction := range s.payments {
		payments[id] = transaction
	}
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.bookings, s.walks, s.payments = bookings, walks, payments
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) putBooking(booking models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = booking
}

func (s *memStore) booking(id string) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memStore) putPayment(transaction models.PaymentTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[transaction.ID] = transaction
}

func (s *memStore) paymentBySession(sessionID string) (models.PaymentTransaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, transaction := range s.payments {
		if transaction.SessionID == sessionID {
			return transaction, true
		}
	}
	return models.PaymentTransaction{}, false
}

func (s *memStore) paymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

func copyWalk(walk models.Walk) models.Walk {
	walk.RouteData = append([]models.RoutePoint{}, walk.RouteData...)
	walk.Photos = append([]string{}, walk.Photos...)
	return walk
}

type memBookings struct{ s *memStore }

func (r memBookings) Create(_ context.Context, input repository.CreateBookingInput) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking := models.Booking{
		ID:          r.s.nextID("booking"),
		OwnerID:     input.OwnerID,
		WalkerID:    input.WalkerID,
		DogID:       input.DogID,
		ServiceType: input.ServiceType,
		Date:        input.Date,
		Time:        input.Time,
		Duration:    input.Duration,
		Status:      models.BookingPendingPayment,
		Amount:      input.Amount,
		Location:    input.Location,
		Notes:       input.Notes,
		CreatedAt:   r.s.now,
	}
	r.s.bookings[booking.ID] = booking
	return &booking, nil
}

func (r memBookings) GetByID(_ context.Context, bookingID string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[bookingID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &booking, nil
}

func (r memBookings) GetByIDForUpdate(ctx context.Context, bookingID string) (*models.Booking, error) {
	return r.GetByID(ctx, bookingID)
}

func (r memBookings) ListByOwner(_ context.Context, ownerID string) ([]models.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.BookingDetail{}
	for _, booking := range r.s.bookings {
		if booking.OwnerID == ownerID {
			out = append(out, models.BookingDetail{Booking: booking})
		}
	}
	return out, nil
}

func (r memBookings) ListByWalker(_ context.Context, walkerID string) ([]models.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.BookingDetail{}
	for _, booking := range r.s.bookings {
		if booking.WalkerID == walkerID {
			out = append(out, models.BookingDetail{Booking: booking})
		}
	}
	return out, nil
}

func (r memBookings) UpdateStatusIfCurrent(
	_ context.Context,
	bookingID string,
	current, next models.BookingStatus,
) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[bookingID]
	if !ok || booking.Status != current {
		return nil, pgx.ErrNoRows
	}
	booking.Status = next
	r.s.bookings[bookingID] = booking
	return &booking, nil
}

func (r memBookings) CancelIfCurrent(
	_ context.Context,
	bookingID string,
	current models.BookingStatus,
	input repository.CancelBookingInput,
) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[bookingID]
	if !ok || booking.Status != current {
		return nil, pgx.ErrNoRows
	}
	cancelledAt := input.CancelledAt
	refund := input.RefundAmount
	description := input.RefundDescription
	booking.Status = models.BookingCancelled
	booking.CancelledAt = &cancelledAt
	booking.RefundAmount = &refund
	booking.RefundDescription = &description
	r.s.bookings[bookingID] = booking
	return &booking, nil
}

type memWalks struct{ s *memStore }

// walkFor must be called with mu held.
func (r memWalks) walkFor(bookingID string) models.Walk {
	walk, ok := r.s.walks[bookingID]
	if !ok {
		walk = models.Walk{
			ID:        r.s.nextID("walk"),
			BookingID: bookingID,
			Status:    models.WalkPending,
			RouteData: []models.RoutePoint{},
			Photos:    []string{},
			CreatedAt: r.s.now,
		}
	}
	return copyWalk(walk)
}

func (r memWalks) save(walk models.Walk) *models.Walk {
	r.s.walks[walk.BookingID] = walk
	out := copyWalk(walk)
	return &out
}

func (r memWalks) GetOrCreate(_ context.Context, bookingID string) (*models.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.save(r.walkFor(bookingID)), nil
}

func (r memWalks) StartIfCurrent(_ context.Context, bookingID string, current models.WalkStatus, startedAt time.Time) (*models.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	walk, ok := r.s.walks[bookingID]
	if !ok || walk.Status != current {
		return nil, pgx.ErrNoRows
	}
	walk = copyWalk(walk)
	walk.Status = models.WalkInProgress
	walk.StartTime = &startedAt
	return r.save(walk), nil
}

func (r memWalks) AppendRoutePoint(_ context.Context, bookingID string, point models.RoutePoint) (*models.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	walk := r.walkFor(bookingID)
	walk.RouteData = append(walk.RouteData, point)
	return r.save(walk), nil
}

func (r memWalks) AppendPhoto(_ context.Context, bookingID string, photo string) (*models.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	walk := r.walkFor(bookingID)
	walk.Photos = append(walk.Photos, photo)
	return r.save(walk), nil
}

func (r memWalks) SetReport(_ context.Context, bookingID string, report string) (*models.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	walk := r.walkFor(bookingID)
	walk.ReportText = &report
	return r.save(walk), nil
}

func (r memWalks) CompleteIfCurrent(
	_ context.Context,
	bookingID string,
	current models.WalkStatus,
	input repository.CompleteWalkInput,
) (*models.Walk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	walk, ok := r.s.walks[bookingID]
	if !ok || walk.Status != current {
		return nil, pgx.ErrNoRows
	}
	walk = copyWalk(walk)
	endedAt := input.EndedAt
	walk.Status = models.WalkCompleted
	walk.EndTime = &endedAt
	if input.Photo != nil {
		walk.Photos = append(walk.Photos, *input.Photo)
	}
	if input.Report != nil {
		walk.ReportText = input.Report
	}
	return r.save(walk), nil
}

type memPayments struct{ s *memStore }

func (r memPayments) Create(_ context.Context, input repository.CreatePaymentInput) (*models.PaymentTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.SessionID == input.SessionID {
			return nil, errors.New("duplicate session_id")
		}
	}
	transaction := models.PaymentTransaction{
		ID:            r.s.nextID("txn"),
		SessionID:     input.SessionID,
		BookingID:     input.BookingID,
		UserID:        input.UserID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		PaymentStatus: models.PaymentPending,
		Status:        models.TransactionInitiated,
		Metadata:      input.Metadata,
		CreatedAt:     r.s.now,
	}
	r.s.payments[transaction.ID] = transaction
	r.s.paymentWrites++
	return &transaction, nil
}

func (r memPayments) GetBySessionID(_ context.Context, sessionID string) (*models.PaymentTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, transaction := range r.s.payments {
		if transaction.SessionID == sessionID {
			return &transaction, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memPayments) GetBySessionIDForUpdate(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	return r.GetBySessionID(ctx, sessionID)
}

func (r memPayments) UpdateStatusIfCurrent(
	_ context.Context,
	transactionID string,
	current models.PaymentStatus,
	next models.PaymentStatus,
	status models.TransactionStatus,
) (*models.PaymentTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	transaction, ok := r.s.payments[transactionID]
	if !ok || transaction.PaymentStatus != current {
		return nil, pgx.ErrNoRows
	}
	transaction.PaymentStatus = next
	transaction.Status = status
	r.s.payments[transactionID] = transaction
	r.s.paymentWrites++
	return &transaction, nil
}

type stubWalkerReader struct {
	walkers map[string]*models.Walker
}

func (s stubWalkerReader) GetByID(_ context.Context, walkerID string) (*models.Walker, error) {
	walker, ok := s.walkers[walkerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return walker, nil
}

func (s stubWalkerReader) GetByUserID(_ context.Context, userID string) (*models.Walker, error) {
	for _, walker := range s.walkers {
		if walker.UserID == userID {
			return walker, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type stubDogReader struct {
	dogs map[string]*models.Dog
}

func (s stubDogReader) GetByID(_ context.Context, dogID string) (*models.Dog, error) {
	dog, ok := s.dogs[dogID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dog, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, published := range p.keys {
		if published == key {
			n++
		}
	}
	return n
}

type fakeProvider struct {
	mu        sync.Mutex
	createErr error
	statusErr error
	status    map[string]models.PaymentStatus
	event     *payments.WebhookEvent
	secret    string
	requests  []payments.CheckoutRequest
	sessions  int
}

func (p *fakeProvider) CreateSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.sessions++
	p.requests = append(p.requests, req)
	id := fmt.Sprintf("cs_test_%d", p.sessions)
	return &payments.CheckoutSession{SessionID: id, URL: "https://checkout.example/" + id}, nil
}

func (p *fakeProvider) GetStatus(_ context.Context, sessionID string) (*payments.SessionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	status, ok := p.status[sessionID]
	if !ok {
		status = models.PaymentPending
	}
	return &payments.SessionStatus{Status: "open", PaymentStatus: status, AmountTotal: 2200, Currency: "eur"}, nil
}

func (p *fakeProvider) VerifyWebhook(_ []byte, signatureHeader string) (*payments.WebhookEvent, error) {
	if signatureHeader != p.secret || p.secret == "" {
		return nil, payments.ErrSignatureInvalid
	}
	if p.event == nil {
		return &payments.WebhookEvent{ID: "evt_ignored", Type: "customer.created"}, nil
	}
	return p.event, nil
}
