package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboairmx/quotesync/internal/models"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() map[string]models.Product {
	return map[string]models.Product{
		"A":   {SKU: "A", Name: "Refrigerador", Price: d("1000")},
		"B":   {SKU: "B", Name: "Congelador", Price: d("500")},
		"C":   {SKU: "C", Name: "Tornillo", Price: d("0.335"), Category: models.SparePartsCategory},
		"FAN": {SKU: "FAN", Name: "Ventilador", Price: d("120"), Category: models.SparePartsCategory},
	}
}

func TestComputeQuoteWorkedExample(t *testing.T) {
	items := []ItemRequest{
		{ProductID: "A", Quantity: 2, DiscountPct: d("10")},
		{ProductID: "B", Quantity: 1},
	}
	policy := ShippingPolicy{FreeAbove: d("3000"), FlatFee: d("250")}

	priced, err := ComputeQuote(items, testCatalog(), d("0.16"), policy)
	require.NoError(t, err)

	assert.Equal(t, "2300.00", priced.Subtotal.StringFixed(2))
	assert.Equal(t, "368.00", priced.Tax.StringFixed(2))
	assert.Equal(t, "250.00", priced.Shipping.StringFixed(2))
	assert.Equal(t, "2918.00", priced.Total.StringFixed(2))
	assert.True(t, priced.DiscountAmount.IsZero())
	assert.Equal(t, models.DeliveryStandard, priced.DeliveryMethod)
	assert.False(t, priced.IsSparePartsOrder)
	require.Len(t, priced.Items, 2)
	assert.Equal(t, "1800", priced.Items[0].LineTotal.String())
	assert.Equal(t, "A", priced.Items[0].SKU)
}

func TestComputeQuoteRoundsSumNotLines(t *testing.T) {
	// Three lines of 0.335 each: rounding per line gives 1.02, the exact sum rounds to 1.01.
	items := []ItemRequest{
		{ProductID: "C", Quantity: 1},
		{ProductID: "C", Quantity: 1},
		{ProductID: "C", Quantity: 1},
	}
	priced, err := ComputeQuote(items, testCatalog(), decimal.Zero, ShippingPolicy{})
	require.NoError(t, err)
	assert.Equal(t, "1.01", priced.Subtotal.StringFixed(2))
	assert.True(t, priced.IsSparePartsOrder)
}

func TestComputeQuoteShippingBoundary(t *testing.T) {
	policy := ShippingPolicy{FreeAbove: d("1000"), FlatFee: d("250")}
	cases := []struct {
		name     string
		qty      int
		product  string
		shipping string
		delivery string
	}{
		{name: "exactly at threshold", qty: 1, product: "A", shipping: "0.00", delivery: models.DeliveryFreeShipping},
		{name: "below threshold", qty: 1, product: "B", shipping: "250.00", delivery: models.DeliveryStandard},
		{name: "above threshold", qty: 3, product: "B", shipping: "0.00", delivery: models.DeliveryFreeShipping},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			priced, err := ComputeQuote([]ItemRequest{{ProductID: tc.product, Quantity: tc.qty}}, testCatalog(), d("0.16"), policy)
			require.NoError(t, err)
			assert.Equal(t, tc.shipping, priced.Shipping.StringFixed(2))
			assert.Equal(t, tc.delivery, priced.DeliveryMethod)
		})
	}
}

func TestComputeQuoteWithQuoteDiscount(t *testing.T) {
	policy := ShippingPolicy{FreeAbove: d("1000"), FlatFee: d("250")}
	priced, err := ComputeQuote([]ItemRequest{{ProductID: "A", Quantity: 1}}, testCatalog(), d("0.16"), policy, WithQuoteDiscount(d("10")))
	require.NoError(t, err)

	// Shipping is decided before the quote discount, so 1000 still ships free.
	assert.Equal(t, "100.00", priced.DiscountAmount.StringFixed(2))
	assert.Equal(t, "144.00", priced.Tax.StringFixed(2))
	assert.Equal(t, "0.00", priced.Shipping.StringFixed(2))
	assert.Equal(t, "1044.00", priced.Total.StringFixed(2))
}

func TestComputeQuoteErrors(t *testing.T) {
	catalog := testCatalog()
	policy := ShippingPolicy{FreeAbove: d("1000"), FlatFee: d("250")}

	_, err := ComputeQuote([]ItemRequest{{ProductID: "NOPE", Quantity: 1}}, catalog, d("0.16"), policy)
	assert.True(t, errors.Is(err, ErrUnknownProduct))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = ComputeQuote([]ItemRequest{{ProductID: "A", Quantity: 0}}, catalog, d("0.16"), policy)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
	assert.False(t, errors.Is(err, ErrUnknownProduct))

	_, err = ComputeQuote([]ItemRequest{{ProductID: "A", Quantity: 1, DiscountPct: d("101")}}, catalog, d("0.16"), policy)
	assert.True(t, errors.Is(err, ErrInvalidDiscount))

	_, err = ComputeQuote([]ItemRequest{{ProductID: "A", Quantity: 1}}, catalog, d("-0.01"), policy)
	assert.True(t, errors.Is(err, ErrInvalidTaxRate))

	_, err = ComputeQuote([]ItemRequest{{ProductID: "A", Quantity: 1}}, catalog, d("0.16"), policy, WithQuoteDiscount(d("-1")))
	assert.True(t, errors.Is(err, ErrInvalidDiscount))

	_, err = ComputeQuote(nil, catalog, d("0.16"), policy)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestComputeQuoteProperties(t *testing.T) {
	policy := ShippingPolicy{FreeAbove: d("50000"), FlatFee: d("2500")}
	catalog := testCatalog()
	for qty := 1; qty <= 40; qty += 3 {
		for _, pct := range []string{"0", "7.5", "33.333", "100"} {
			items := []ItemRequest{
				{ProductID: "A", Quantity: qty, DiscountPct: d(pct)},
				{ProductID: "C", Quantity: qty * 7},
			}
			priced, err := ComputeQuote(items, catalog, d("0.16"), policy, WithQuoteDiscount(d(pct)))
			require.NoError(t, err)

			assert.True(t, priced.Total.GreaterThanOrEqual(priced.Subtotal.Sub(priced.DiscountAmount)))
			assert.True(t, models.Round2(priced.Total).Equal(priced.Total), "rounding an output total is a no-op")
			assert.True(t, priced.Total.Equal(priced.Subtotal.Sub(priced.DiscountAmount).Add(priced.Tax).Add(priced.Shipping)))
		}
	}
}

func TestComputeQuoteIsDeterministic(t *testing.T) {
	items := []ItemRequest{{ProductID: "A", Quantity: 3, DiscountPct: d("12.5")}, {ProductID: "FAN", Quantity: 2}}
	policy := ShippingPolicy{FreeAbove: d("50000"), FlatFee: d("2500")}
	first, err := ComputeQuote(items, testCatalog(), d("0.16"), policy)
	require.NoError(t, err)
	second, err := ComputeQuote(items, testCatalog(), d("0.16"), policy)
	require.NoError(t, err)
	assert.True(t, first.Total.Equal(second.Total))
}
