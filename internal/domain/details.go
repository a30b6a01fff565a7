package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PassengerType string

const (
	PassengerAdult PassengerType = "adult"
	PassengerChild PassengerType = "child"
)

// Passenger is one entry of the passenger form. Ordinals start at 1, adults
// first and then children in submission order.
type Passenger struct {
	Ordinal   int           `json:"ordinal"`
	Type      PassengerType `json:"type"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Birthdate string        `json:"birthdate,omitempty"`
}

func (p Passenger) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

type PaymentInfo struct {
	Method        string     `json:"method"`
	Status        string     `json:"status,omitempty"`
	SessionID     string     `json:"session_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	PaidAtDisplay string     `json:"paid_at_display,omitempty"`
}

// BookingDetails is stored as a single JSON document next to the booking row.
type BookingDetails struct {
	Outbound   *LegQuote         `json:"outbound"`
	Return     *LegQuote         `json:"return"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Passengers []Passenger       `json:"passengers"`
	Contact    map[string]string `json:"contact,omitempty"`
	Infants    int               `json:"infants"`
	Payment    *PaymentInfo      `json:"payment,omitempty"`
}

// ReservationDraft carries the search summary and the selected voyages from
// the search step to the passenger step.
type ReservationDraft struct {
	Token           string          `json:"token"`
	UserID          string          `json:"user_id"`
	TripType        TripType        `json:"trip_type"`
	OriginName      string          `json:"origin_name"`
	DestinationName string          `json:"destination_name"`
	DepartureDate   time.Time       `json:"departure_date"`
	ReturnDate      *time.Time      `json:"return_date,omitempty"`
	Adults          int             `json:"adults"`
	Children        int             `json:"children"`
	Infants         int             `json:"infants"`
	Outbound        *VoyageSnapshot `json:"outbound"`
	Return          *VoyageSnapshot `json:"return,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
