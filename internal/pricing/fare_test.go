package pricing

import (
	"fmt"
	"testing"

	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(price string) *domain.VoyageSnapshot {
	return &domain.VoyageSnapshot{
		Company:           "Starlite Ferries",
		DepartureDateTime: "2025-10-22T14:00:00",
		Price:             domain.NewPrice(decimal.RequireFromString(price)),
	}
}

func TestLegTotal_Formula(t *testing.T) {
	for _, price := range []string{"0", "1", "99.99", "1000", "1234.57"} {
		for adults := 0; adults <= 4; adults++ {
			for children := 0; children <= 3; children++ {
				t.Run(fmt.Sprintf("%s/%d/%d", price, adults, children), func(t *testing.T) {
					p := decimal.RequireFromString(price)
					want := p.Mul(decimal.NewFromInt(int64(adults))).
						Add(p.Mul(decimal.NewFromInt(int64(children))).Div(decimal.NewFromInt(2)))
					assert.True(t, want.Equal(LegTotal(p, adults, children)))
				})
			}
		}
	}
}

func TestQuoteTrip_OneWay(t *testing.T) {
	q := QuoteTrip(domain.TripTypeOneWay, snapshot("1000"), snapshot("800"), 2, 1)

	require.NotNil(t, q.Outbound)
	assert.Nil(t, q.Return)
	assert.Equal(t, "2500", q.Total.String())
	assert.Equal(t, "2500", q.Outbound.LegTotal.String())
	assert.Equal(t, "1000", q.Outbound.AdultPrice.String())
	assert.Equal(t, "500", q.Outbound.ChildPrice.String())
	assert.Equal(t, 1, q.Outbound.ValidChildren)
}

func TestQuoteTrip_RoundTrip(t *testing.T) {
	q := QuoteTrip(domain.TripTypeRoundTrip, snapshot("1000"), snapshot("800"), 2, 1)

	require.NotNil(t, q.Return)
	assert.Equal(t, "2000", q.Return.LegTotal.String())
	assert.Equal(t, "4500", q.Total.String())
}

func TestQuoteTrip_UnpricedLegContributesZero(t *testing.T) {
	unpriced := &domain.VoyageSnapshot{Company: "Montenegro Lines"}

	q := QuoteTrip(domain.TripTypeRoundTrip, snapshot("750.50"), unpriced, 1, 0)

	require.NotNil(t, q.Return)
	assert.True(t, q.Return.LegTotal.IsZero())
	assert.Equal(t, "750.5", q.Total.String())
}

func TestQuoteTrip_RoundsHalfEven(t *testing.T) {
	// 0.25 * 0.5 = 0.125 per child, rounds to even at 2 places
	q := QuoteTrip(domain.TripTypeOneWay, snapshot("0.25"), nil, 0, 1)
	assert.Equal(t, "0.12", q.Total.StringFixed(2))

	q = QuoteTrip(domain.TripTypeOneWay, snapshot("0.75"), nil, 0, 1)
	assert.Equal(t, "0.38", q.Total.StringFixed(2))
}

func TestQuoteTrip_NoOutbound(t *testing.T) {
	q := QuoteTrip(domain.TripTypeOneWay, nil, nil, 2, 0)

	assert.Nil(t, q.Outbound)
	assert.True(t, q.Total.IsZero())
}
