package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusReserved  BookingStatus = "reserved"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusExpired   BookingStatus = "expired"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusReserved, BookingStatusConfirmed,
		BookingStatusCancelled, BookingStatusCompleted, BookingStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in status s may move to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		switch next {
		case BookingStatusReserved, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
			return true
		}
	case BookingStatusReserved:
		switch next {
		case BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled, BookingStatusExpired:
			return true
		}
	case BookingStatusConfirmed:
		switch next {
		case BookingStatusCompleted, BookingStatusCancelled:
			return true
		}
	case BookingStatusCompleted, BookingStatusExpired:
		return next == BookingStatusCancelled
	case BookingStatusCancelled:
		return false
	}
	return false
}

// Unpaid bookings are still waiting for payment.
func (s BookingStatus) Unpaid() bool {
	return s == BookingStatusReserved || s == BookingStatusPending
}

func (s BookingStatus) Paid() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCompleted
}

type TripType string

const (
	TripTypeOneWay    TripType = "one_way"
	TripTypeRoundTrip TripType = "round_trip"
)

func (t TripType) Valid() bool {
	return t == TripTypeOneWay || t == TripTypeRoundTrip
}

type Booking struct {
	ID            int64
	UserID        string
	Reference     string
	TripType      TripType
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	ShippingLine  string
	Adults        int
	Children      int
	TotalPrice    decimal.Decimal
	Details       BookingDetails
	Status        BookingStatus
	ReservedUntil *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransitionTo moves the booking to next. ReservedUntil survives only while
// the booking stays reserved; callers set it when entering reserved.
func (b *Booking) TransitionTo(next BookingStatus, now time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
	}
	b.Status = next
	if next != BookingStatusReserved {
		b.ReservedUntil = nil
	}
	b.UpdatedAt = now
	return nil
}

// HoldLapsed reports a reservation whose hold has run out. The sweeper expires
// these in bulk; payment refuses them in the meantime.
func (b *Booking) HoldLapsed(now time.Time) bool {
	return b.Status == BookingStatusReserved && b.ReservedUntil != nil && !b.ReservedUntil.After(now)
}

func (b *Booking) OwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}

func (b *Booking) CheckInvariants() error {
	if !b.Status.Valid() {
		return fmt.Errorf("unknown booking status %q", b.Status)
	}
	if (b.Status == BookingStatusReserved) != (b.ReservedUntil != nil) {
		return fmt.Errorf("reserved_until must be set only while reserved (status %s)", b.Status)
	}
	if b.Adults < 0 || b.Children < 0 {
		return fmt.Errorf("passenger counts must not be negative")
	}
	return nil
}
