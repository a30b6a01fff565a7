package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	EventBookingReserved  = "booking_reserved"
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
	EventBookingExpired   = "booking_expired"
	EventCheckoutStarted  = "checkout_started"
)

type BookingEvent struct {
	Type          string     `json:"type"`
	BookingID     int64      `json:"booking_id"`
	Reference     string     `json:"reference"`
	UserID        string     `json:"user_id"`
	Email         string     `json:"email,omitempty"`
	Status        string     `json:"status"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	TotalPrice    string     `json:"total_price"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		Reference:     b.Reference,
		UserID:        b.UserID,
		Email:         b.Details.Contact["email"],
		Status:        string(b.Status),
		Origin:        b.Origin,
		Destination:   b.Destination,
		TotalPrice:    b.TotalPrice.StringFixed(2),
		ReservedUntil: b.ReservedUntil,
		OccurredAt:    at,
	}
}

func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
