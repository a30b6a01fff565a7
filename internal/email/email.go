package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/harborhop/internal/kafka"
)

// Sender turns booking events into passenger notifications. Delivery is a
// structured log line until a mail provider is configured.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject := Subject(event)
	if subject == "" {
		return nil
	}
	s.logger.InfoContext(ctx, "send notification",
		slog.String("to", recipient(event)),
		slog.String("subject", subject),
		slog.String("reference", event.Reference),
		slog.Int64("booking_id", event.BookingID),
	)
	return nil
}

// Subject is empty for events that do not notify the passenger.
func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingReserved:
		return fmt.Sprintf("Booking %s reserved: %s to %s", event.Reference, event.Origin, event.Destination)
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s awaiting payment", event.Reference)
	case kafka.EventBookingCompleted:
		return fmt.Sprintf("Payment received for booking %s", event.Reference)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.Reference)
	case kafka.EventBookingExpired:
		return fmt.Sprintf("Reservation %s expired", event.Reference)
	default:
		return ""
	}
}

func recipient(event kafka.BookingEvent) string {
	if event.Email != "" {
		return event.Email
	}
	return "user:" + event.UserID
}
