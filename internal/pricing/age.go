package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
)

const (
	BirthdateLayout = "2006-01-02"

	MinChildAge = 2
	MaxChildAge = 11
)

// AgeAt returns the completed years between birth and on, counting a year
// only once its anniversary has been reached.
func AgeAt(birth, on time.Time) int {
	years := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		years--
	}
	return years
}

func ClassifyAge(age int) domain.AgeVerdict {
	switch {
	case age < MinChildAge:
		return domain.VerdictTooYoung
	case age > MaxChildAge:
		return domain.VerdictTooOld
	default:
		return domain.VerdictEligible
	}
}

type ChildAge struct {
	Ordinal int
	Age     int
	Verdict domain.AgeVerdict
}

// ChildCheck is the aggregate outcome for all declared children.
type ChildCheck struct {
	Eligible int
	Ages     []ChildAge
	Issues   []domain.PassengerIssue
}

func (c ChildCheck) Err() error {
	if len(c.Issues) == 0 {
		return nil
	}
	return &domain.ValidationError{Issues: c.Issues}
}

// CheckChildren validates the declared child passengers against departure.
// Children occupy ordinals adults+1 .. adults+declared; a child with no
// matching passenger entry is reported as missing its birthdate.
func CheckChildren(departure time.Time, adults, declared int, passengers []domain.Passenger) ChildCheck {
	byOrdinal := make(map[int]domain.Passenger, len(passengers))
	for _, p := range passengers {
		byOrdinal[p.Ordinal] = p
	}
	on := dateOnly(departure)

	var check ChildCheck
	for i := 1; i <= declared; i++ {
		ordinal := adults + i
		p, ok := byOrdinal[ordinal]
		name := p.DisplayName()
		if name == "" {
			name = fmt.Sprintf("Child %d", i)
		}

		raw := strings.TrimSpace(p.Birthdate)
		if !ok || raw == "" {
			check.Issues = append(check.Issues, domain.PassengerIssue{Ordinal: ordinal, Name: name, Reason: domain.VerdictMissingBirthdate})
			continue
		}

		birth, err := time.Parse(BirthdateLayout, raw)
		if err != nil {
			check.Issues = append(check.Issues, domain.PassengerIssue{Ordinal: ordinal, Name: name, Reason: domain.VerdictInvalidBirthdate})
			continue
		}

		age := AgeAt(birth, on)
		verdict := ClassifyAge(age)
		check.Ages = append(check.Ages, ChildAge{Ordinal: ordinal, Age: age, Verdict: verdict})
		if verdict == domain.VerdictEligible {
			check.Eligible++
			continue
		}
		check.Issues = append(check.Issues, domain.PassengerIssue{Ordinal: ordinal, Name: name, Reason: verdict, Age: &age})
	}
	return check
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
