package gateway

import (
	"context"
	"testing"

	"github.com/Domenick1991/harborhop/internal/service/payment"
	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway("")
	assert.ErrorIs(t, err, ErrNotConfigured)

	g, err := NewStripeGateway("sk_test_123")
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestCheckoutParams(t *testing.T) {
	ctx := context.Background()
	params := checkoutParams(ctx, payment.CheckoutRequest{
		Reference:     "HH-ABCD1234",
		Description:   "Batangas - Calapan",
		AmountMinor:   250000,
		Currency:      "php",
		CustomerEmail: "ana@example.com",
		SuccessURL:    "https://harborhop.test/ok",
		CancelURL:     "https://harborhop.test/cancel",
	})

	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "HH-ABCD1234", *params.ClientReferenceID)
	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(250000), *item.PriceData.UnitAmount)
	assert.Equal(t, "php", *item.PriceData.Currency)
	assert.Equal(t, "Batangas - Calapan", *item.PriceData.ProductData.Name)
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, "ana@example.com", *params.CustomerEmail)
	assert.Equal(t, "HH-ABCD1234", params.Metadata["reference"])
	assert.Equal(t, ctx, params.Context)
}

func TestToSession(t *testing.T) {
	paid := toSession(&stripe.CheckoutSession{ID: "cs_1", URL: "https://x", PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid})
	assert.True(t, paid.Paid)

	unpaid := toSession(&stripe.CheckoutSession{ID: "cs_2", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid})
	assert.False(t, unpaid.Paid)
	assert.Equal(t, "cs_2", unpaid.ID)
}
