// Package pricing derives quote totals from catalog prices. Everything here is
// pure: no I/O, no clock, no randomness.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/internal/models"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
)

var (
	ErrUnknownProduct  = pkgerrors.New(pkgerrors.CodeValidation, "unknown product")
	ErrInvalidQuantity = pkgerrors.New(pkgerrors.CodeValidation, "invalid quantity")
	ErrInvalidDiscount = pkgerrors.New(pkgerrors.CodeValidation, "invalid discount")
	ErrInvalidTaxRate  = pkgerrors.New(pkgerrors.CodeValidation, "invalid tax rate")
)

var hundred = decimal.NewFromInt(100)

// ItemRequest selects a catalog product for a quote.
type ItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	Quantity    int             `json:"quantity"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

// ShippingPolicy charges FlatFee unless the subtotal reaches FreeAbove.
type ShippingPolicy struct {
	FreeAbove decimal.Decimal
	FlatFee   decimal.Decimal
}

// Fee returns the shipping charge for a rounded subtotal.
func (p ShippingPolicy) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeAbove) {
		return decimal.Zero
	}
	return p.FlatFee
}

// PricedQuote carries the monetary part of a quote. Money fields other than
// the line totals are rounded to two decimals.
type PricedQuote struct {
	Items             []models.LineItem `json:"items"`
	Subtotal          decimal.Decimal   `json:"subtotal"`
	DiscountPct       decimal.Decimal   `json:"discount_pct"`
	DiscountAmount    decimal.Decimal   `json:"discount_amount"`
	TaxRate           decimal.Decimal   `json:"tax_rate"`
	Tax               decimal.Decimal   `json:"tax"`
	Shipping          decimal.Decimal   `json:"shipping"`
	Total             decimal.Decimal   `json:"total"`
	IsSparePartsOrder bool              `json:"is_spare_parts_order"`
	DeliveryMethod    string            `json:"delivery_method"`
}

type options struct {
	quoteDiscountPct decimal.Decimal
}

type Option func(*options)

// WithQuoteDiscount applies a percentage discount to the whole subtotal before tax.
func WithQuoteDiscount(pct decimal.Decimal) Option {
	return func(o *options) {
		o.quoteDiscountPct = pct
	}
}

// ComputeQuote prices items against catalog. Line totals stay unrounded until
// they are summed, so the subtotal is round(sum(lines)) and never
// sum(round(lines)). Shipping is decided on the subtotal before the quote
// discount and tax.
func ComputeQuote(items []ItemRequest, catalog map[string]models.Product, taxRate decimal.Decimal, policy ShippingPolicy, opts ...Option) (PricedQuote, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if taxRate.IsNegative() {
		return PricedQuote{}, invalid(ErrInvalidTaxRate, "tax_rate", taxRate.String())
	}
	if !validPct(o.quoteDiscountPct) {
		return PricedQuote{}, invalid(ErrInvalidDiscount, "discount_pct", o.quoteDiscountPct.String())
	}
	if len(items) == 0 {
		return PricedQuote{}, pkgerrors.New(pkgerrors.CodeValidation, "quote needs at least one item")
	}

	lines := make([]models.LineItem, 0, len(items))
	sum := decimal.Zero
	spareParts := true
	for i, req := range items {
		product, ok := catalog[req.ProductID]
		if !ok {
			return PricedQuote{}, invalid(ErrUnknownProduct, "product_id", req.ProductID)
		}
		if req.Quantity <= 0 {
			return PricedQuote{}, invalid(ErrInvalidQuantity, "items", itemRef(i, req.ProductID))
		}
		if !validPct(req.DiscountPct) {
			return PricedQuote{}, invalid(ErrInvalidDiscount, "items", itemRef(i, req.ProductID))
		}
		line := models.LineItem{
			ProductID:   req.ProductID,
			SKU:         product.SKU,
			Name:        product.Name,
			Category:    product.Category,
			Line:        product.Line,
			Quantity:    req.Quantity,
			UnitPrice:   product.Price,
			DiscountPct: req.DiscountPct,
		}
		exact := line.ComputeTotal()
		sum = sum.Add(exact)
		line.LineTotal = models.Round2(exact)
		lines = append(lines, line)
		spareParts = spareParts && product.IsSparePart()
	}

	subtotal := models.Round2(sum)
	discount := models.Round2(subtotal.Mul(o.quoteDiscountPct).Div(hundred))
	tax := models.Round2(subtotal.Sub(discount).Mul(taxRate))
	shipping := models.Round2(policy.Fee(subtotal))
	delivery := models.DeliveryStandard
	if shipping.IsZero() {
		delivery = models.DeliveryFreeShipping
	}

	return PricedQuote{
		Items:             lines,
		Subtotal:          subtotal,
		DiscountPct:       o.quoteDiscountPct,
		DiscountAmount:    discount,
		TaxRate:           taxRate,
		Tax:               tax,
		Shipping:          shipping,
		Total:             subtotal.Sub(discount).Add(tax).Add(shipping),
		IsSparePartsOrder: spareParts,
		DeliveryMethod:    delivery,
	}, nil
}

func validPct(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

func itemRef(index int, productID string) string {
	return fmt.Sprintf("item %d (%s)", index, productID)
}

// invalid copies a sentinel so errors.Is keeps matching while details stay per call.
func invalid(sentinel *pkgerrors.Error, field, value string) error {
	return pkgerrors.New(sentinel.Code(), sentinel.Message()).WithDetails(map[string]string{field: value})
}
