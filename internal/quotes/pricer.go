package quotes

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/internal/pricing"
	"github.com/turboairmx/quotesync/pkg/config"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/validation"
)

type catalogSnapshotter interface {
	Snapshot(ctx context.Context, skus ...string) (map[string]models.Product, error)
}

// PriceRequest is a quote preview: items plus an optional whole-quote discount.
type PriceRequest struct {
	Items       []pricing.ItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountPct decimal.Decimal       `json:"discount_pct"`
}

func (r *PriceRequest) Validate() error {
	return validation.Struct(r)
}

// Pricer prices requests against the live catalog without storing anything.
type Pricer struct {
	catalog catalogSnapshotter
	taxRate decimal.Decimal
	policy  pricing.ShippingPolicy
}

func NewPricer(catalog catalogSnapshotter, cfg config.PricingConfig) *Pricer {
	return &Pricer{
		catalog: catalog,
		taxRate: cfg.TaxRate,
		policy:  shippingPolicy(cfg),
	}
}

func (p *Pricer) Price(ctx context.Context, req PriceRequest) (pricing.PricedQuote, error) {
	if err := req.Validate(); err != nil {
		return pricing.PricedQuote{}, err
	}
	skus := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		skus = append(skus, item.ProductID)
	}
	products, err := p.catalog.Snapshot(ctx, skus...)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeValidation {
			return pricing.PricedQuote{}, err
		}
		return pricing.PricedQuote{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	return pricing.ComputeQuote(req.Items, products, p.taxRate, p.policy, pricing.WithQuoteDiscount(req.DiscountPct))
}

func shippingPolicy(cfg config.PricingConfig) pricing.ShippingPolicy {
	return pricing.ShippingPolicy{FreeAbove: cfg.FreeShippingAbove, FlatFee: cfg.ShippingFlatFee}
}
