package domain

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a per-passenger fare as reported upstream. Values that are missing
// or not numeric decode as unpriced instead of failing the whole payload.
type Price struct {
	Amount decimal.Decimal
	Valid  bool
}

func NewPrice(d decimal.Decimal) Price {
	return Price{Amount: d, Valid: true}
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return p.Amount.MarshalJSON()
}

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	*p = NewPrice(d)
	return nil
}

// VoyageSnapshot is the frozen copy of an upstream voyage offer taken when a
// passenger selects it.
type VoyageSnapshot struct {
	Company           string `json:"company"`
	Vessel            string `json:"vessel"`
	DepartureDate     string `json:"departureDate"`
	DepartureTime     string `json:"departureTime"`
	DepartureDateTime string `json:"departureDateTime"`
	AccommodationName string `json:"accommodationName"`
	SeatType          string `json:"seatType"`
	Price             Price  `json:"price"`
	Distance          any    `json:"distance,omitempty"`
	OriginName        string `json:"originName"`
	DestinationName   string `json:"destinationName"`
}

// LegQuote is a snapshot with its computed fare breakdown.
type LegQuote struct {
	VoyageSnapshot
	LegTotal      decimal.Decimal `json:"legTotal"`
	AdultPrice    decimal.Decimal `json:"adultPrice"`
	ChildPrice    decimal.Decimal `json:"childPrice"`
	ValidChildren int             `json:"validChildren"`
}

type Location struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Route struct {
	Origin      Location `json:"origin"`
	Destination Location `json:"destination"`
}

type Voyage struct {
	ID                string `json:"id,omitempty"`
	Company           string `json:"company"`
	Vessel            string `json:"vessel"`
	DepartureDateTime string `json:"departureDateTime"`
	Distance          any    `json:"distance,omitempty"`
}

type Accommodation struct {
	Name     string `json:"name"`
	SeatType string `json:"seatType"`
	Price    Price  `json:"price"`
}

// VoyageResult is one search hit: a voyage plus its bookable offers.
type VoyageResult struct {
	Voyage         Voyage          `json:"voyage"`
	Accommodations []Accommodation `json:"accommodations"`
	CutoffMessage  string          `json:"cutoffMessage,omitempty"`
}

type SearchQuery struct {
	TripType      TripType `json:"trip_type"`
	OriginID      int      `json:"origin"`
	DestinationID int      `json:"destination"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date,omitempty"`
	Adults        int      `json:"adults"`
	Children      int      `json:"children"`
}

func (q SearchQuery) PassengerCount() int {
	return max(q.Adults+q.Children, 1)
}

// ReturnLeg is the query for the way back, with endpoints swapped.
func (q SearchQuery) ReturnLeg() SearchQuery {
	back := q
	back.OriginID, back.DestinationID = q.DestinationID, q.OriginID
	back.DepartureDate = q.ReturnDate
	back.ReturnDate = ""
	return back
}

func (v VoyageResult) Clone() VoyageResult {
	out := v
	if v.Accommodations != nil {
		out.Accommodations = append([]Accommodation(nil), v.Accommodations...)
	}
	return out
}
