package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/Domenick1991/harborhop/internal/kafka"
	"github.com/Domenick1991/harborhop/internal/repository"
)

const (
	MethodStripe      = "stripe"
	MethodUnspecified = "unspecified"

	PaidAtDisplayLayout = "Jan 02, 2006 03:04 PM"
)

type PaymentUseCase interface {
	Pay(ctx context.Context, userID string, id int64, method string) (*Result, error)
	StartCheckout(ctx context.Context, userID string, id int64, urls CheckoutURLs) (*Checkout, error)
	ConfirmCheckout(ctx context.Context, userID string, id int64, sessionID string) (*Result, error)
}

// Gateway is the hosted checkout provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

type CheckoutRequest struct {
	Reference     string
	Description   string
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID   string
	URL  string
	Paid bool
}

type CheckoutURLs struct {
	Success string
	Cancel  string
}

type Checkout struct {
	Booking   *domain.Booking
	SessionID string
	URL       string
}

type Result struct {
	Booking          *domain.Booking
	AlreadyCompleted bool
}

type Notifier interface {
	Notify(ctx context.Context, eventType string, b *domain.Booking) error
}

type PaymentService struct {
	bookings repository.BookingRepository
	gateway  Gateway
	notifier Notifier
	currency string
	timeout  time.Duration
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

type PaymentServiceOption func(*PaymentService)

func WithClock(now func() time.Time) PaymentServiceOption {
	return func(s *PaymentService) {
		s.now = now
	}
}

func WithNotifier(notifier Notifier) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notifier = notifier
	}
}

func WithCurrency(currency string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.currency = strings.ToLower(currency)
	}
}

func WithTimeout(timeout time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		s.timeout = timeout
	}
}

func WithLocation(loc *time.Location) PaymentServiceOption {
	return func(s *PaymentService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewPaymentService(bookings repository.BookingRepository, gateway Gateway, logger *slog.Logger, opts ...PaymentServiceOption) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	service := &PaymentService{
		bookings: bookings,
		gateway:  gateway,
		currency: "php",
		timeout:  10 * time.Second,
		location: time.Local,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Pay records a manual payment. Completing an already completed booking is a
// no-op and keeps the original payment stamp.
func (s *PaymentService) Pay(ctx context.Context, userID string, id int64, method string) (*Result, error) {
	booking, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.holdOpen(booking); err != nil {
		return nil, err
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = MethodUnspecified
	}
	return s.complete(ctx, booking, method, "")
}

func (s *PaymentService) StartCheckout(ctx context.Context, userID string, id int64, urls CheckoutURLs) (*Checkout, error) {
	booking, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := payable(booking); err != nil {
		return nil, err
	}
	if err := s.holdOpen(booking); err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, &domain.UpstreamError{Service: "payment gateway", Err: fmt.Errorf("not configured")}
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.gateway.CreateCheckoutSession(gctx, CheckoutRequest{
		Reference:     booking.Reference,
		Description:   fmt.Sprintf("%s - %s", booking.Origin, booking.Destination),
		AmountMinor:   AmountMinor(booking),
		Currency:      s.currency,
		CustomerEmail: booking.Details.Contact["email"],
		SuccessURL:    urls.Success,
		CancelURL:     urls.Cancel,
	})
	if err != nil {
		s.logger.Error("checkout session failed",
			slog.Int64("booking_id", booking.ID),
			slog.String("reference", booking.Reference),
			slog.String("error", err.Error()),
		)
		return nil, &domain.UpstreamError{Service: "payment gateway", Err: err}
	}

	booking.Details.Payment = &domain.PaymentInfo{
		Method:    MethodStripe,
		Status:    domain.PaymentStatusPending,
		SessionID: session.ID,
	}
	booking.UpdatedAt = s.now()
	if err := s.bookings.Save(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking %d: %w", booking.ID, err)
	}
	s.notify(ctx, kafka.EventCheckoutStarted, booking)

	return &Checkout{Booking: booking, SessionID: session.ID, URL: session.URL}, nil
}

// ConfirmCheckout completes the booking when the gateway reports the session
// paid. An unpaid session leaves the booking untouched.
func (s *PaymentService) ConfirmCheckout(ctx context.Context, userID string, id int64, sessionID string) (*Result, error) {
	booking, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCompleted {
		return &Result{Booking: booking, AlreadyCompleted: true}, nil
	}

	sessionID = strings.TrimSpace(sessionID)
	recorded := ""
	if booking.Details.Payment != nil {
		recorded = booking.Details.Payment.SessionID
	}
	if sessionID == "" {
		sessionID = recorded
	}
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", "no checkout session for this booking")
	}
	if recorded != "" && recorded != sessionID {
		return nil, domain.NewValidationError("session_id", "checkout session does not belong to this booking")
	}
	if s.gateway == nil {
		return nil, &domain.UpstreamError{Service: "payment gateway", Err: fmt.Errorf("not configured")}
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.gateway.GetCheckoutSession(gctx, sessionID)
	if err != nil {
		s.logger.Error("checkout session lookup failed",
			slog.Int64("booking_id", booking.ID),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return nil, &domain.UpstreamError{Service: "payment gateway", Err: err}
	}
	if !session.Paid {
		s.logger.Info("checkout session not paid",
			slog.Int64("booking_id", booking.ID),
			slog.String("session_id", sessionID),
		)
		return nil, domain.ErrPaymentNotCompleted
	}
	return s.complete(ctx, booking, MethodStripe, sessionID)
}

func (s *PaymentService) complete(ctx context.Context, booking *domain.Booking, method, sessionID string) (*Result, error) {
	if booking.Status == domain.BookingStatusCompleted {
		return &Result{Booking: booking, AlreadyCompleted: true}, nil
	}
	if err := payable(booking); err != nil {
		return nil, err
	}

	now := s.now()
	paidAt := now
	booking.Details.Payment = &domain.PaymentInfo{
		Method:        method,
		Status:        domain.PaymentStatusPaid,
		SessionID:     sessionID,
		PaidAt:        &paidAt,
		PaidAtDisplay: now.In(s.location).Format(PaidAtDisplayLayout),
	}
	if err := booking.TransitionTo(domain.BookingStatusCompleted, now); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking %d: %w", booking.ID, err)
	}
	s.notify(ctx, kafka.EventBookingCompleted, booking)

	s.logger.Info("booking paid",
		slog.Int64("booking_id", booking.ID),
		slog.String("reference", booking.Reference),
		slog.String("method", method),
	)
	return &Result{Booking: booking}, nil
}

func (s *PaymentService) owned(ctx context.Context, userID string, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

// payable limits payment to pending and reserved bookings.
func payable(b *domain.Booking) error {
	if b.Status.Unpaid() {
		return nil
	}
	return fmt.Errorf("%w: cannot pay a %s booking", domain.ErrInvalidTransition, b.Status)
}

// holdOpen rejects new payments on a reservation whose hold has lapsed but
// which the sweeper has not expired yet. A checkout that was already paid
// is still confirmed.
func (s *PaymentService) holdOpen(b *domain.Booking) error {
	if b.HoldLapsed(s.now()) {
		return domain.ErrHoldLapsed
	}
	return nil
}

// AmountMinor is the booking total in the smallest currency unit.
func AmountMinor(b *domain.Booking) int64 {
	return b.TotalPrice.Shift(2).Round(0).IntPart()
}

func (s *PaymentService) notify(ctx context.Context, eventType string, b *domain.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, eventType, b); err != nil {
		s.logger.Warn("failed to publish booking event",
			slog.String("type", eventType),
			slog.Int64("booking_id", b.ID),
			slog.String("error", err.Error()),
		)
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
