package voyage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
)

var ErrUnparseableDeparture = errors.New("unparseable departure timestamp")

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

var clockLayouts = []string{"3:04 PM", "03:04 PM", "15:04"}

// ParseDeparture reads an upstream departure timestamp. Zoned RFC 3339 values
// keep their offset; naive values are taken as wall time in loc.
func ParseDeparture(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparseableDeparture
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	// Fractional seconds or a trailing zone on an otherwise naive stamp.
	if len(s) > 19 {
		if t, err := time.ParseInLocation(naiveLayouts[0], s[:19], loc); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(naiveLayouts[1], s[:19], loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDeparture, s)
}

// DepartureOf resolves a snapshot's departure instant, falling back to the
// separate date and clock fields when the combined timestamp is absent.
func DepartureOf(s *domain.VoyageSnapshot, loc *time.Location) (time.Time, error) {
	if s == nil {
		return time.Time{}, ErrUnparseableDeparture
	}
	if t, err := ParseDeparture(s.DepartureDateTime, loc); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s.DepartureDate), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrUnparseableDeparture, s.DepartureDateTime, s.DepartureDate)
	}
	clock := strings.ToUpper(strings.TrimSpace(s.DepartureTime))
	for _, layout := range clockLayouts {
		if c, err := time.Parse(layout, clock); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDeparture, s.DepartureTime)
}
