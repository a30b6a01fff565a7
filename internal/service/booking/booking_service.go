package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/Domenick1991/harborhop/internal/kafka"
	"github.com/Domenick1991/harborhop/internal/pricing"
	"github.com/Domenick1991/harborhop/internal/repository"
	"github.com/Domenick1991/harborhop/internal/voyage"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateDraft(ctx context.Context, userID string, input DraftInput) (*domain.ReservationDraft, error)
	CreateBooking(ctx context.Context, userID string, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID string, id int64) (*BookingView, error)
	CancelBooking(ctx context.Context, userID string, id int64) (*CancelResult, error)
	ListReservations(ctx context.Context, userID string) (*Reservations, error)
	History(ctx context.Context, userID string) ([]domain.Booking, error)
	ExpireReservations(ctx context.Context) ([]domain.Booking, error)
}

type DraftStore interface {
	SaveDraft(ctx context.Context, draft *domain.ReservationDraft) error
	GetDraft(ctx context.Context, token string) (*domain.ReservationDraft, error)
	DeleteDraft(ctx context.Context, token string) error
}

// Locker serializes reservation attempts per user. Release only drops the
// lock while it is still held under the token returned by Acquire.
type Locker interface {
	AcquireReservationLock(ctx context.Context, userID string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseReservationLock(ctx context.Context, userID, token string) error
}

type Notifier interface {
	Notify(ctx context.Context, eventType string, b *domain.Booking) error
}

type Action string

const (
	ActionReserve Action = "reserve"
	ActionPayment Action = "payment"
)

// Policy holds the booking rules that depend on configuration.
type Policy struct {
	ReserveLead     time.Duration
	Hold            time.Duration
	CutoffLead      time.Duration
	LockTTL         time.Duration
	Location        *time.Location
	ReferencePrefix string
}

func DefaultPolicy() Policy {
	return Policy{
		ReserveLead:     2 * time.Hour,
		Hold:            48 * time.Hour,
		CutoffLead:      voyage.DefaultCutoffLead,
		LockTTL:         30 * time.Second,
		Location:        time.Local,
		ReferencePrefix: "HH",
	}
}

type DraftInput struct {
	TripType        domain.TripType        `json:"trip_type"`
	OriginName      string                 `json:"origin_name"`
	DestinationName string                 `json:"destination_name"`
	DepartureDate   string                 `json:"departure_date"`
	ReturnDate      string                 `json:"return_date,omitempty"`
	Adults          int                    `json:"adults"`
	Children        int                    `json:"children"`
	Infants         int                    `json:"infants"`
	Outbound        *domain.VoyageSnapshot `json:"outbound"`
	Return          *domain.VoyageSnapshot `json:"return,omitempty"`
}

type CreateBookingInput struct {
	DraftToken string             `json:"draft_token"`
	Action     Action             `json:"action"`
	Passengers []domain.Passenger `json:"passengers"`
	Contact    map[string]string  `json:"contact,omitempty"`
}

type BookingView struct {
	Booking    *domain.Booking
	CanReserve bool
}

type CancelResult struct {
	Booking          *domain.Booking
	AlreadyCancelled bool
}

type Reservations struct {
	Unpaid []domain.Booking
	Paid   []domain.Booking
}

type BookingService struct {
	bookings   repository.BookingRepository
	drafts     DraftStore
	locker     Locker
	notifier   Notifier
	references *ReferenceGenerator
	cutoff     *voyage.CutoffFilter
	policy     Policy
	logger     *slog.Logger
	now        func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLocker(locker Locker) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
	}
}

func WithNotifier(notifier Notifier) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = notifier
	}
}

func WithReferenceGenerator(g *ReferenceGenerator) BookingServiceOption {
	return func(s *BookingService) {
		s.references = g
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	drafts DraftStore,
	policy Policy,
	logger *slog.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.Location == nil {
		policy.Location = time.Local
	}
	service := &BookingService{
		bookings: bookings,
		drafts:   drafts,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.references == nil {
		service.references = NewReferenceGenerator(policy.ReferencePrefix, bookings)
	}
	service.cutoff = voyage.NewCutoffFilter(policy.CutoffLead, policy.Location, logger)
	service.cutoff.Now = service.now
	return service
}

func (s *BookingService) CreateDraft(ctx context.Context, userID string, input DraftInput) (*domain.ReservationDraft, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}
	draft, err := s.validateDraft(input)
	if err != nil {
		return nil, err
	}

	for _, leg := range []*domain.VoyageSnapshot{draft.Outbound, draft.Return} {
		if leg != nil && s.cutoff.SnapshotCutOff(leg) {
			return nil, domain.ErrVoyageCutOff
		}
	}

	draft.Token = uuid.NewString()
	draft.UserID = userID
	draft.CreatedAt = s.now()
	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

func (s *BookingService) validateDraft(input DraftInput) (*domain.ReservationDraft, error) {
	tripType := input.TripType
	if tripType == "" {
		tripType = domain.TripTypeOneWay
	}
	if !tripType.Valid() {
		return nil, domain.NewValidationError("trip_type", "must be one_way or round_trip")
	}
	if strings.TrimSpace(input.OriginName) == "" || strings.TrimSpace(input.DestinationName) == "" {
		return nil, domain.NewValidationError("route", "origin and destination are required")
	}
	if input.Adults < 0 || input.Children < 0 || input.Infants < 0 {
		return nil, domain.NewValidationError("passengers", "counts must not be negative")
	}
	if input.Adults+input.Children == 0 {
		return nil, domain.NewValidationError("passengers", "at least one passenger is required")
	}
	if input.Outbound == nil {
		return nil, domain.NewValidationError("outbound", "select an outbound voyage")
	}

	departure, err := time.ParseInLocation(pricing.BirthdateLayout, input.DepartureDate, s.policy.Location)
	if err != nil {
		return nil, domain.NewValidationError("departure_date", "must be YYYY-MM-DD")
	}

	draft := &domain.ReservationDraft{
		TripType:        tripType,
		OriginName:      strings.TrimSpace(input.OriginName),
		DestinationName: strings.TrimSpace(input.DestinationName),
		DepartureDate:   departure,
		Adults:          input.Adults,
		Children:        input.Children,
		Infants:         input.Infants,
		Outbound:        input.Outbound,
	}

	if tripType == domain.TripTypeRoundTrip {
		back, err := time.ParseInLocation(pricing.BirthdateLayout, input.ReturnDate, s.policy.Location)
		if err != nil {
			return nil, domain.NewValidationError("return_date", "round trips need a return date in YYYY-MM-DD")
		}
		if back.Before(departure) {
			return nil, domain.NewValidationError("return_date", "must not be before the departure date")
		}
		if input.Return == nil {
			return nil, domain.NewValidationError("return", "select a return voyage")
		}
		draft.ReturnDate = &back
		draft.Return = input.Return
	}
	return draft, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, userID string, input CreateBookingInput) (*domain.Booking, error) {
	if input.Action != ActionReserve && input.Action != ActionPayment {
		return nil, domain.NewValidationError("action", "must be reserve or payment")
	}

	draft, err := s.drafts.GetDraft(ctx, input.DraftToken)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, domain.ErrForbidden
	}

	if s.locker != nil {
		token, ok, err := s.locker.AcquireReservationLock(ctx, userID, s.policy.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire reservation lock: %w", err)
		}
		if !ok {
			return nil, domain.ErrReservationInFlight
		}
		defer func() {
			if err := s.locker.ReleaseReservationLock(context.WithoutCancel(ctx), userID, token); err != nil {
				s.logger.Warn("failed to release reservation lock", slog.String("user_id", userID), slog.String("error", err.Error()))
			}
		}()
	}

	passengers := normalizePassengers(input.Passengers, draft.Adults)
	check := pricing.CheckChildren(draft.DepartureDate, draft.Adults, draft.Children, passengers)
	if err := check.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	if input.Action == ActionReserve {
		departure, err := voyage.DepartureOf(draft.Outbound, s.policy.Location)
		if err != nil {
			s.logger.Warn("reserve refused, departure not parseable",
				slog.String("draft", draft.Token),
				slog.String("error", err.Error()),
			)
			return nil, domain.ErrTooCloseToReserve
		}
		if departure.Sub(now) < s.policy.ReserveLead {
			return nil, domain.ErrTooCloseToReserve
		}
	}

	quote := pricing.QuoteTrip(draft.TripType, draft.Outbound, draft.Return, draft.Adults, check.Eligible)
	booking := &domain.Booking{
		UserID:        userID,
		TripType:      draft.TripType,
		Origin:        draft.OriginName,
		Destination:   draft.DestinationName,
		DepartureDate: draft.DepartureDate,
		ReturnDate:    draft.ReturnDate,
		ShippingLine:  draft.Outbound.Company,
		Adults:        draft.Adults,
		Children:      check.Eligible,
		TotalPrice:    quote.Total,
		Details: domain.BookingDetails{
			Outbound:   quote.Outbound,
			Return:     quote.Return,
			TotalPrice: quote.Total,
			Passengers: passengers,
			Contact:    input.Contact,
			Infants:    draft.Infants,
		},
		Status:    domain.BookingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	eventType := kafka.EventBookingCreated
	if input.Action == ActionReserve {
		until := now.Add(s.policy.Hold)
		booking.Status = domain.BookingStatusReserved
		booking.ReservedUntil = &until
		eventType = kafka.EventBookingReserved
	}
	if err := booking.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := s.insert(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.drafts.DeleteDraft(ctx, draft.Token); err != nil {
		s.logger.Warn("failed to delete draft", slog.String("draft", draft.Token), slog.String("error", err.Error()))
	}
	s.notify(ctx, eventType, booking)

	s.logger.Info("booking created",
		slog.Int64("booking_id", booking.ID),
		slog.String("reference", booking.Reference),
		slog.String("status", string(booking.Status)),
	)
	return booking, nil
}

// insert assigns a reference and stores the booking, drawing a new reference
// if a concurrent insert took the same one.
func (s *BookingService) insert(ctx context.Context, booking *domain.Booking) error {
	for attempt := 0; attempt < defaultReferenceAttempts; attempt++ {
		reference, err := s.references.Generate(ctx)
		if err != nil {
			return err
		}
		booking.Reference = reference

		err = s.bookings.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateReference) {
			return fmt.Errorf("create booking: %w", err)
		}
	}
	return domain.ErrReferenceExhausted
}

// normalizePassengers numbers entries without an ordinal in submission order
// and tags them adult or child by position.
func normalizePassengers(passengers []domain.Passenger, adults int) []domain.Passenger {
	out := make([]domain.Passenger, len(passengers))
	for i, p := range passengers {
		if p.Ordinal <= 0 {
			p.Ordinal = i + 1
		}
		if p.Ordinal <= adults {
			p.Type = domain.PassengerAdult
		} else {
			p.Type = domain.PassengerChild
		}
		p.FirstName = strings.TrimSpace(p.FirstName)
		p.LastName = strings.TrimSpace(p.LastName)
		out[i] = p
	}
	return out
}

func (s *BookingService) GetBooking(ctx context.Context, userID string, id int64) (*BookingView, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.OwnedBy(userID) {
		return nil, domain.ErrBookingNotFound
	}
	return &BookingView{Booking: booking, CanReserve: s.canReserve(booking)}, nil
}

// canReserve only gates the UI; it does not depend on the current status.
func (s *BookingService) canReserve(b *domain.Booking) bool {
	departure, err := voyage.DepartureOf(legSnapshot(b.Details.Outbound), s.policy.Location)
	if err != nil {
		departure = b.DepartureDate
	}
	return departure.Sub(s.now()) > s.policy.ReserveLead
}

func legSnapshot(leg *domain.LegQuote) *domain.VoyageSnapshot {
	if leg == nil {
		return nil
	}
	return &leg.VoyageSnapshot
}

func (s *BookingService) CancelBooking(ctx context.Context, userID string, id int64) (*CancelResult, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	if booking.Status == domain.BookingStatusCancelled {
		return &CancelResult{Booking: booking, AlreadyCancelled: true}, nil
	}

	if err := booking.TransitionTo(domain.BookingStatusCancelled, s.now()); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking %d: %w", booking.ID, err)
	}
	s.notify(ctx, kafka.EventBookingCancelled, booking)
	return &CancelResult{Booking: booking}, nil
}

func (s *BookingService) ListReservations(ctx context.Context, userID string) (*Reservations, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &Reservations{Unpaid: []domain.Booking{}, Paid: []domain.Booking{}}
	for _, b := range bookings {
		switch {
		case b.Status.Unpaid():
			out.Unpaid = append(out.Unpaid, b)
		case b.Status.Paid():
			out.Paid = append(out.Paid, b)
		}
	}
	slices.SortStableFunc(out.Unpaid, byDepartureThenNewest)
	slices.SortStableFunc(out.Paid, byDepartureThenNewest)
	return out, nil
}

func byDepartureThenNewest(a, b domain.Booking) int {
	if c := a.DepartureDate.Compare(b.DepartureDate); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

func (s *BookingService) History(ctx context.Context, userID string) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(bookings, func(a, b domain.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return bookings, nil
}

func (s *BookingService) ExpireReservations(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpireReservedBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.notify(ctx, kafka.EventBookingExpired, &expired[i])
	}
	if len(expired) > 0 {
		s.logger.Info("expired reservations", slog.Int("count", len(expired)))
	}
	return expired, nil
}

func (s *BookingService) notify(ctx context.Context, eventType string, b *domain.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, eventType, b); err != nil {
		s.logger.Warn("failed to publish booking event",
			slog.String("type", eventType),
			slog.Int64("booking_id", b.ID),
			slog.String("reference", b.Reference),
			slog.String("error", err.Error()),
		)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
