package voyage

import (
	"testing"
	"time"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = time.FixedZone("PHT", 8*60*60)

func fixedFilter(now time.Time) *CutoffFilter {
	f := NewCutoffFilter(DefaultCutoffLead, manila, nil)
	f.Now = func() time.Time { return now }
	return f
}

func voyageAt(departure string) domain.VoyageResult {
	return domain.VoyageResult{
		Voyage: domain.Voyage{Company: "Starlite Ferries", DepartureDateTime: departure},
		Accommodations: []domain.Accommodation{
			{Name: "Tourist", Price: domain.NewPrice(decimal.NewFromInt(1000))},
			{Name: "Business", Price: domain.NewPrice(decimal.NewFromInt(1500))},
		},
	}
}

func TestParseDeparture_Formats(t *testing.T) {
	want := time.Date(2025, 10, 22, 14, 0, 0, 0, manila)

	for _, s := range []string{
		"2025-10-22T14:00:00",
		"2025-10-22 14:00:00",
		"2025-10-22T14:00",
		"2025-10-22 14:00",
		"2025-10-22T14:00:00.000",
		"2025-10-22T06:00:00Z",
		"2025-10-22T14:00:00+08:00",
	} {
		t.Run(s, func(t *testing.T) {
			got, err := ParseDeparture(s, manila)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestParseDeparture_Invalid(t *testing.T) {
	for _, s := range []string{"", "tomorrow", "22/10/2025 14:00", "N/A"} {
		_, err := ParseDeparture(s, manila)
		assert.ErrorIs(t, err, ErrUnparseableDeparture, s)
	}
}

func TestDepartureOf_FallsBackToDateAndClock(t *testing.T) {
	s := &domain.VoyageSnapshot{DepartureDateTime: "N/A", DepartureDate: "2025-10-22", DepartureTime: "2:30 pm"}

	got, err := DepartureOf(s, manila)

	require.NoError(t, err)
	assert.True(t, time.Date(2025, 10, 22, 14, 30, 0, 0, manila).Equal(got))
}

func TestCutoffFilter_Apply(t *testing.T) {
	now := time.Date(2025, 10, 22, 10, 0, 0, 0, manila)
	f := fixedFilter(now)
	voyages := []domain.VoyageResult{
		voyageAt("2025-10-22T11:00:00"),
		voyageAt("2025-10-22 13:00:00"),
		voyageAt("garbage"),
	}

	out := f.Apply(voyages)

	require.Len(t, out, 3)
	assert.Empty(t, out[0].Accommodations)
	assert.NotNil(t, out[0].Accommodations)
	assert.Equal(t, "Cut Off for this voyage was at 10/22/2025 9:30 am", out[0].CutoffMessage)

	assert.Len(t, out[1].Accommodations, 2)
	assert.Empty(t, out[1].CutoffMessage)

	// fail-open: unparseable departures stay bookable
	assert.Len(t, out[2].Accommodations, 2)
	assert.Empty(t, out[2].CutoffMessage)

	// input is left untouched
	assert.Len(t, voyages[0].Accommodations, 2)
}

func TestCutoffFilter_Boundary(t *testing.T) {
	now := time.Date(2025, 10, 22, 10, 0, 0, 0, manila)
	f := fixedFilter(now)

	assert.False(t, f.IsCutOff("2025-10-22T11:30:00"), "exactly at cutoff is still bookable")
	assert.True(t, f.IsCutOff("2025-10-22T11:29:00"))
	assert.False(t, f.IsCutOff("2025-10-22T13:00:00"))
	assert.False(t, f.IsCutOff("not a date"))
}

func TestCutoffMessage_Afternoon(t *testing.T) {
	cutoff := time.Date(2025, 1, 5, 15, 7, 0, 0, manila)
	assert.Equal(t, "Cut Off for this voyage was at 01/05/2025 3:07 pm", CutoffMessage(cutoff))
}

func TestCutoffFilter_SnapshotCutOff(t *testing.T) {
	now := time.Date(2025, 10, 22, 10, 0, 0, 0, manila)
	f := fixedFilter(now)

	assert.True(t, f.SnapshotCutOff(&domain.VoyageSnapshot{DepartureDate: "2025-10-22", DepartureTime: "11:00 AM"}))
	assert.False(t, f.SnapshotCutOff(&domain.VoyageSnapshot{DepartureDateTime: "2025-10-22T14:00:00"}))
	assert.False(t, f.SnapshotCutOff(&domain.VoyageSnapshot{DepartureDate: "soon"}))
}
