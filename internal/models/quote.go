package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/validation"
)

const (
	DeliveryFreeShipping = "free_shipping"
	DeliveryStandard     = "standard"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one priced catalog entry on a quote.
type LineItem struct {
	ProductID   string          `json:"product_id" validate:"required"`
	SKU         string          `json:"sku" validate:"required"`
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Line        string          `json:"line,omitempty"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"price" validate:"gte=0"`
	DiscountPct decimal.Decimal `json:"discount_pct" validate:"gte=0,lte=100"`
	LineTotal   decimal.Decimal `json:"total" validate:"gte=0"`
}

// ComputeTotal returns quantity x unit price less the line discount, unrounded.
func (l LineItem) ComputeTotal() decimal.Decimal {
	gross := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	if l.DiscountPct.IsZero() {
		return gross
	}
	return gross.Mul(hundred.Sub(l.DiscountPct)).Div(hundred)
}

// Quote is stored at /quotes/{repId}/{quoteId}.
type Quote struct {
	ID                string            `json:"id" validate:"required"`
	QuoteNumber       string            `json:"quote_number" validate:"required"`
	ClientID          string            `json:"client_id" validate:"required"`
	ClientName        string            `json:"client,omitempty"`
	RepID             string            `json:"user_id" validate:"required"`
	SalesRep          string            `json:"sales_rep,omitempty"`
	Region            string            `json:"region,omitempty"`
	Items             []LineItem        `json:"items" validate:"required,min=1,dive"`
	Subtotal          decimal.Decimal   `json:"subtotal" validate:"gte=0"`
	DiscountPct       decimal.Decimal   `json:"discount_pct" validate:"gte=0,lte=100"`
	DiscountAmount    decimal.Decimal   `json:"discount_amount" validate:"gte=0"`
	TaxRate           decimal.Decimal   `json:"tax_rate" validate:"gte=0"`
	Tax               decimal.Decimal   `json:"tax" validate:"gte=0"`
	Shipping          decimal.Decimal   `json:"shipping" validate:"gte=0"`
	Total             decimal.Decimal   `json:"total" validate:"gte=0"`
	Currency          string            `json:"currency" validate:"required,len=3"`
	Status            enums.QuoteStatus `json:"status" validate:"required"`
	Notes             string            `json:"notes,omitempty"`
	Terms             string            `json:"terms,omitempty"`
	PaymentTerms      string            `json:"payment_terms,omitempty"`
	IsSparePartsOrder bool              `json:"is_spare_parts_order"`
	DeliveryMethod    string            `json:"delivery_method,omitempty" validate:"omitempty,oneof=free_shipping standard"`
	EstimatedDelivery time.Time         `json:"estimated_delivery,omitzero"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	ExpiresAt         time.Time         `json:"expires_at"`
}

// Validate checks field constraints and that the stored totals agree with each other.
func (q *Quote) Validate() error {
	if err := validation.Struct(q); err != nil {
		return err
	}
	if !q.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"status": "is not a known quote status"})
	}
	expected := q.Subtotal.Sub(q.DiscountAmount).Add(q.Tax).Add(q.Shipping)
	if !expected.Equal(q.Total) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "quote total %s does not match components %s", q.Total, expected)
	}
	if q.ExpiresAt.Before(q.CreatedAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote expires before it was created")
	}
	return nil
}
