package pricing

import (
	"testing"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(BirthdateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAgeAt(t *testing.T) {
	testCases := []struct {
		birth, on string
		want      int
	}{
		{"2020-01-01", "2025-10-22", 5},
		{"2013-10-22", "2025-10-22", 12},
		{"2013-10-23", "2025-10-22", 11},
		{"2023-10-23", "2025-10-22", 1},
		{"2023-10-22", "2025-10-22", 2},
		{"2020-02-29", "2023-02-28", 2},
		{"2020-02-29", "2023-03-01", 3},
		{"2026-01-01", "2025-10-22", -1},
	}

	for _, tc := range testCases {
		t.Run(tc.birth+"@"+tc.on, func(t *testing.T) {
			assert.Equal(t, tc.want, AgeAt(date(tc.birth), date(tc.on)))
		})
	}
}

func TestClassifyAge_Boundaries(t *testing.T) {
	for age := -1; age <= 15; age++ {
		got := ClassifyAge(age)
		switch {
		case age < 2:
			assert.Equal(t, domain.VerdictTooYoung, got, "age %d", age)
		case age > 11:
			assert.Equal(t, domain.VerdictTooOld, got, "age %d", age)
		default:
			assert.Equal(t, domain.VerdictEligible, got, "age %d", age)
		}
	}
}

func TestCheckChildren_Eligible(t *testing.T) {
	departure := time.Date(2025, 10, 22, 14, 0, 0, 0, time.Local)
	passengers := []domain.Passenger{
		{Ordinal: 1, Type: domain.PassengerAdult, FirstName: "Ana"},
		{Ordinal: 2, Type: domain.PassengerAdult, FirstName: "Ben"},
		{Ordinal: 3, Type: domain.PassengerChild, FirstName: "Cy", Birthdate: "2020-01-01"},
	}

	check := CheckChildren(departure, 2, 1, passengers)

	require.NoError(t, check.Err())
	assert.Equal(t, 1, check.Eligible)
	require.Len(t, check.Ages, 1)
	assert.Equal(t, 5, check.Ages[0].Age)
	assert.Equal(t, 3, check.Ages[0].Ordinal)
}

func TestCheckChildren_TooYoung(t *testing.T) {
	departure := time.Date(2025, 10, 22, 14, 0, 0, 0, time.Local)
	passengers := []domain.Passenger{
		{Ordinal: 3, Type: domain.PassengerChild, FirstName: "Cy", Birthdate: "2024-06-01"},
	}

	check := CheckChildren(departure, 2, 1, passengers)

	assert.Equal(t, 0, check.Eligible)
	require.Len(t, check.Issues, 1)
	assert.Equal(t, domain.VerdictTooYoung, check.Issues[0].Reason)
	assert.Equal(t, 1, *check.Issues[0].Age)

	var verr *domain.ValidationError
	require.ErrorAs(t, check.Err(), &verr)
	assert.Contains(t, verr.Report(), "Passenger 3 (Cy)")
}

func TestCheckChildren_CollectsAllIssues(t *testing.T) {
	departure := time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC)
	passengers := []domain.Passenger{
		{Ordinal: 2, Type: domain.PassengerChild, FirstName: "Old", Birthdate: "2010-01-01"},
		{Ordinal: 3, Type: domain.PassengerChild, FirstName: "Bad", Birthdate: "22/10/2019"},
		{Ordinal: 4, Type: domain.PassengerChild, FirstName: "Ok", Birthdate: "2019-10-22"},
		{Ordinal: 5, Type: domain.PassengerChild, FirstName: "Blank"},
	}

	check := CheckChildren(departure, 1, 5, passengers)

	assert.Equal(t, 1, check.Eligible)
	require.Len(t, check.Issues, 4)
	assert.Equal(t, domain.VerdictTooOld, check.Issues[0].Reason)
	assert.Equal(t, domain.VerdictInvalidBirthdate, check.Issues[1].Reason)
	assert.Nil(t, check.Issues[1].Age)
	assert.Equal(t, domain.VerdictMissingBirthdate, check.Issues[2].Reason)
	assert.Equal(t, "Blank", check.Issues[2].Name)
	assert.Equal(t, domain.VerdictMissingBirthdate, check.Issues[3].Reason)
	assert.Equal(t, 6, check.Issues[3].Ordinal)
	assert.Equal(t, "Child 5", check.Issues[3].Name)
}

func TestCheckChildren_NoChildren(t *testing.T) {
	check := CheckChildren(time.Now(), 3, 0, nil)

	assert.NoError(t, check.Err())
	assert.Equal(t, 0, check.Eligible)
}
