package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrDraftNotFound   = errors.New("reservation draft not found or expired")
)

var (
	ErrForbidden = errors.New("you do not have permission to modify this booking")
)

var (
	ErrTooCloseToReserve   = errors.New("trip departs too soon to reserve, proceed to payment directly")
	ErrInvalidTransition   = errors.New("invalid booking status transition")
	ErrVoyageCutOff        = errors.New("booking cutoff for this voyage has passed")
	ErrReservationInFlight = errors.New("another reservation for this user is in progress")
	ErrReferenceExhausted  = errors.New("could not allocate a unique booking reference")
	ErrReceiptUnavailable  = errors.New("receipts are only available for completed bookings")
	ErrHoldLapsed          = errors.New("reservation hold has lapsed")
)

var (
	ErrPaymentNotCompleted = errors.New("payment not completed, please try again")
)

// AgeVerdict tags the outcome of a child fare eligibility check.
type AgeVerdict string

const (
	VerdictEligible         AgeVerdict = "eligible"
	VerdictTooYoung         AgeVerdict = "ineligible-too-young"
	VerdictTooOld           AgeVerdict = "ineligible-too-old"
	VerdictInvalidBirthdate AgeVerdict = "invalid-birthdate"
	VerdictMissingBirthdate AgeVerdict = "missing-birthdate"
)

type PassengerIssue struct {
	Ordinal int        `json:"ordinal"`
	Name    string     `json:"name,omitempty"`
	Reason  AgeVerdict `json:"reason"`
	Age     *int       `json:"age,omitempty"`
}

func (i PassengerIssue) Message() string {
	label := fmt.Sprintf("Passenger %d", i.Ordinal)
	if i.Name != "" {
		label += fmt.Sprintf(" (%s)", i.Name)
	}
	switch i.Reason {
	case VerdictInvalidBirthdate:
		return label + ": Invalid birthdate format"
	case VerdictMissingBirthdate:
		return label + ": Birthdate is required for child discount verification"
	case VerdictTooYoung:
		return fmt.Sprintf("%s: Age %d years - Infants under 2 years should be marked as infants, not children", label, derefAge(i.Age))
	case VerdictTooOld:
		return fmt.Sprintf("%s: Age %d years - Only passengers aged 2-11 years qualify for child discount", label, derefAge(i.Age))
	default:
		return label + ": " + string(i.Reason)
	}
}

func derefAge(age *int) int {
	if age == nil {
		return 0
	}
	return *age
}

// ValidationError is a correctable input problem. Passenger issues are all
// reported together so they can be fixed in one round trip.
type ValidationError struct {
	Field  string
	Msg    string
	Issues []PassengerIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) > 0 {
		msgs := make([]string, 0, len(e.Issues))
		for _, issue := range e.Issues {
			msgs = append(msgs, issue.Message())
		}
		return "child discount validation failed: " + strings.Join(msgs, "; ")
	}
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

// Report renders the combined, human-readable error list.
func (e *ValidationError) Report() string {
	if len(e.Issues) == 0 {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString("Child Discount Validation Failed:\n")
	for _, issue := range e.Issues {
		b.WriteString("\n")
		b.WriteString(issue.Message())
	}
	b.WriteString("\n\nPlease correct the birthdates or change the passenger type to Adult.")
	return b.String()
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// UpstreamError wraps a failure of the voyage provider or payment gateway.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindAuthorization     ErrorKind = "authorization"
	KindNotFound          ErrorKind = "not_found"
	KindStateConflict     ErrorKind = "state_conflict"
	KindUpstream          ErrorKind = "upstream"
	KindPaymentIncomplete ErrorKind = "payment_incomplete"
	KindInternal          ErrorKind = "internal"
)

func KindOf(err error) ErrorKind {
	var validation *ValidationError
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return KindValidation
	case errors.Is(err, ErrForbidden):
		return KindAuthorization
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrDraftNotFound):
		return KindNotFound
	case errors.Is(err, ErrTooCloseToReserve), errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrVoyageCutOff), errors.Is(err, ErrReservationInFlight),
		errors.Is(err, ErrReceiptUnavailable), errors.Is(err, ErrHoldLapsed):
		return KindStateConflict
	case errors.Is(err, ErrPaymentNotCompleted):
		return KindPaymentIncomplete
	case errors.As(err, &upstream):
		return KindUpstream
	default:
		return KindInternal
	}
}
