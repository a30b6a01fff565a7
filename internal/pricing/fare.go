package pricing

import (
	"github.com/Domenick1991/harborhop/internal/domain"
	"github.com/shopspring/decimal"
)

// CurrencyScale is the number of decimal places kept when a price is persisted.
const CurrencyScale int32 = 2

var childFactor = decimal.RequireFromString("0.5")

// LegTotal is base*adults + base*children*0.5, unrounded.
func LegTotal(base decimal.Decimal, adults, children int) decimal.Decimal {
	adultPart := base.Mul(decimal.NewFromInt(int64(adults)))
	childPart := base.Mul(decimal.NewFromInt(int64(children))).Mul(childFactor)
	return adultPart.Add(childPart)
}

type Quote struct {
	Outbound *domain.LegQuote
	Return   *domain.LegQuote
	Total    decimal.Decimal
}

// QuoteLeg prices one leg. A nil snapshot or an unpriced one yields a zero
// leg total.
func QuoteLeg(snapshot *domain.VoyageSnapshot, adults, children int) *domain.LegQuote {
	if snapshot == nil {
		return nil
	}
	leg := &domain.LegQuote{VoyageSnapshot: *snapshot}
	if !snapshot.Price.Valid {
		leg.LegTotal = decimal.Zero
		return leg
	}
	base := snapshot.Price.Amount
	leg.AdultPrice = base
	leg.ChildPrice = base.Mul(childFactor)
	leg.ValidChildren = children
	leg.LegTotal = LegTotal(base, adults, children).RoundBank(CurrencyScale)
	return leg
}

// QuoteTrip prices the outbound leg, and the return leg for round trips only.
// The total is summed unrounded and rounded half-even once.
func QuoteTrip(tripType domain.TripType, outbound, back *domain.VoyageSnapshot, adults, children int) Quote {
	q := Quote{Total: decimal.Zero}

	if q.Outbound = QuoteLeg(outbound, adults, children); q.Outbound != nil && outbound.Price.Valid {
		q.Total = q.Total.Add(LegTotal(outbound.Price.Amount, adults, children))
	}
	if tripType == domain.TripTypeRoundTrip {
		if q.Return = QuoteLeg(back, adults, children); q.Return != nil && back.Price.Valid {
			q.Total = q.Total.Add(LegTotal(back.Price.Amount, adults, children))
		}
	}
	q.Total = q.Total.RoundBank(CurrencyScale)
	return q
}
