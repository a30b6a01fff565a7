package kafka

import (
	"context"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
)

type Publisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// BookingNotifier publishes booking lifecycle events to the booking topic and,
// when configured, mirrors them to the notifications topic.
type BookingNotifier struct {
	producer           Publisher
	bookingTopic       string
	notificationsTopic string
	retries            int
	now                func() time.Time
}

type NotifierOption func(*BookingNotifier)

func WithNotificationsTopic(topic string) NotifierOption {
	return func(n *BookingNotifier) {
		n.notificationsTopic = topic
	}
}

func WithPublishRetries(retries int) NotifierOption {
	return func(n *BookingNotifier) {
		if retries > 0 {
			n.retries = retries
		}
	}
}

func WithNotifierClock(now func() time.Time) NotifierOption {
	return func(n *BookingNotifier) {
		n.now = now
	}
}

func NewBookingNotifier(producer Publisher, bookingTopic string, opts ...NotifierOption) *BookingNotifier {
	n := &BookingNotifier{producer: producer, bookingTopic: bookingTopic, retries: 1, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *BookingNotifier) Notify(ctx context.Context, eventType string, b *domain.Booking) error {
	if n.producer == nil || n.bookingTopic == "" {
		return nil
	}
	event := NewBookingEvent(eventType, b, n.now())
	if err := n.producer.PublishWithRetry(ctx, n.bookingTopic, b.Reference, event, n.retries); err != nil {
		return err
	}
	if n.notificationsTopic != "" {
		return n.producer.PublishWithRetry(ctx, n.notificationsTopic, b.Reference, event, n.retries)
	}
	return nil
}
