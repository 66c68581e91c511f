// Package quotes assembles priced quotes and the projects large won quotes spawn.
package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/internal/pricing"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

const (
	defaultValidity  = 30 * 24 * time.Hour
	deliveryLeadTime = 7 * 24 * time.Hour
	projectDuration  = 45 * 24 * time.Hour

	DefaultTerms = "Condiciones: IVA incluido. Precios válidos por 30 días. LAB origen."
)

type BuilderParams struct {
	Pricing config.PricingConfig
	Numbers NumberGenerator
	// Now defaults to time.Now.
	Now func() time.Time
}

type Builder struct {
	numbers  NumberGenerator
	taxRate  decimal.Decimal
	policy   pricing.ShippingPolicy
	validity time.Duration
	currency string
	now      func() time.Time
}

func NewBuilder(params BuilderParams) (*Builder, error) {
	if params.Numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	validity := params.Pricing.QuoteValidity
	if validity <= 0 {
		validity = defaultValidity
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Pricing.Currency))
	if currency == "" {
		currency = "MXN"
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Builder{
		numbers:  params.Numbers,
		taxRate:  params.Pricing.TaxRate,
		policy:   shippingPolicy(params.Pricing),
		validity: validity,
		currency: currency,
		now:      now,
	}, nil
}

// BuildInput describes one quote. Status is mandatory.
type BuildInput struct {
	Client      models.Client
	Rep         models.SalesRep
	Items       []pricing.ItemRequest
	Catalog     map[string]models.Product
	Status      enums.QuoteStatus
	DiscountPct decimal.Decimal
	Notes       string
	Terms       string
	// CreatedAt defaults to the builder clock.
	CreatedAt time.Time
}

// Build prices the items and assembles a validated quote ready to store.
func (b *Builder) Build(ctx context.Context, in BuildInput) (*models.Quote, error) {
	if in.Status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote status is required")
	}
	if !in.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid quote status %q", in.Status)
	}
	if in.Client.ID == "" || in.Client.AssignedSalesRepID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id and assigned sales rep are required")
	}

	priced, err := pricing.ComputeQuote(in.Items, in.Catalog, b.taxRate, b.policy, pricing.WithQuoteDiscount(in.DiscountPct))
	if err != nil {
		return nil, err
	}

	created := in.CreatedAt
	if created.IsZero() {
		created = b.now()
	}
	created = created.UTC()
	number, err := b.numbers.Next(ctx, created)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate quote number")
	}
	terms := in.Terms
	if terms == "" {
		terms = DefaultTerms
	}

	quote := &models.Quote{
		ID:                treestore.NewKeyAt(created),
		QuoteNumber:       number,
		ClientID:          in.Client.ID,
		ClientName:        in.Client.Company,
		RepID:             in.Client.AssignedSalesRepID,
		SalesRep:          in.Rep.Name,
		Region:            in.Rep.Region,
		Items:             priced.Items,
		Subtotal:          priced.Subtotal,
		DiscountPct:       priced.DiscountPct,
		DiscountAmount:    priced.DiscountAmount,
		TaxRate:           priced.TaxRate,
		Tax:               priced.Tax,
		Shipping:          priced.Shipping,
		Total:             priced.Total,
		Currency:          b.currency,
		Status:            in.Status,
		Notes:             in.Notes,
		Terms:             terms,
		PaymentTerms:      in.Client.PaymentTerms,
		IsSparePartsOrder: priced.IsSparePartsOrder,
		DeliveryMethod:    priced.DeliveryMethod,
		EstimatedDelivery: created.Add(deliveryLeadTime),
		CreatedAt:         created,
		UpdatedAt:         created,
		ExpiresAt:         created.Add(b.validity),
	}
	if err := quote.Validate(); err != nil {
		return nil, err
	}
	return quote, nil
}

// QuotePath is where a quote lives in the tree.
func QuotePath(q *models.Quote) string {
	return treestore.Join("quotes", q.RepID, q.ID)
}

// ProjectPath is where a project lives in the tree.
func ProjectPath(p *models.Project) string {
	return treestore.Join("projects", p.RepID, p.ID)
}

// ClientPath is where a client lives in the tree.
func ClientPath(c *models.Client) string {
	return treestore.Join("clients", c.AssignedSalesRepID, c.ID)
}

// MaybeProject returns the project a quote spawns, if any: the total must
// strictly exceed threshold and the quote must be accepted or closed won.
func MaybeProject(quote *models.Quote, client models.Client, threshold decimal.Decimal) (*models.Project, bool) {
	if quote == nil || !quote.Status.Won() || !quote.Total.GreaterThan(threshold) {
		return nil, false
	}
	equipment := 0
	for _, item := range quote.Items {
		equipment += item.Quantity
	}
	location := strings.Trim(strings.Join([]string{client.City, client.State}, ", "), ", ")
	return &models.Project{
		ID:                  uuid.NewString(),
		Name:                "Proyecto " + client.Company,
		ClientID:            client.ID,
		ClientName:          client.Company,
		RepID:               quote.RepID,
		SalesRep:            quote.SalesRep,
		RelatedQuoteID:      quote.ID,
		Status:              enums.ProjectStatusPlanning,
		StartDate:           quote.CreatedAt,
		EstimatedCompletion: quote.CreatedAt.Add(projectDuration),
		Budget:              quote.Total,
		Description:         fmt.Sprintf("Proyecto de %d equipos TurboAir para %s", equipment, client.BusinessType),
		Notes:               "Instalación programada para " + location,
		CreatedAt:           quote.CreatedAt,
		UpdatedAt:           quote.CreatedAt,
	}, true
}
