package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/pkg/validation"
)

// SparePartsCategory marks catalog entries sold as replacement parts.
const SparePartsCategory = "Refacciones"

// WarehouseStock is the on-hand count for one warehouse.
type WarehouseStock struct {
	Available  int       `json:"available" validate:"gte=0"`
	Reserved   int       `json:"reserved" validate:"gte=0"`
	LastUpdate time.Time `json:"lastUpdate,omitzero"`
}

// Product is stored at /products/{sku}.
type Product struct {
	// Key is the node name under /products. It normally equals SKU.
	Key            string                    `json:"-"`
	SKU            string                    `json:"sku" validate:"required"`
	Name           string                    `json:"name" validate:"required"`
	Price          decimal.Decimal           `json:"price" validate:"gte=0"`
	Category       string                    `json:"category,omitempty"`
	Line           string                    `json:"line,omitempty"`
	WarehouseStock map[string]WarehouseStock `json:"warehouseStock,omitempty" validate:"omitempty,dive"`
	TotalStock     int                       `json:"totalStock" validate:"gte=0"`
	AvailableStock int                       `json:"availableStock" validate:"gte=0"`
}

func (p *Product) Validate() error {
	return validation.Struct(p)
}

// IsSparePart reports whether the product belongs to the spare parts catalog.
func (p Product) IsSparePart() bool {
	return p.Category == SparePartsCategory
}

// RecomputeStock derives the totals from the warehouse breakdown. Reserved
// units count toward the total but not toward what can be sold.
func (p *Product) RecomputeStock() {
	total, available := 0, 0
	for _, stock := range p.WarehouseStock {
		total += stock.Available
		available += stock.Available - stock.Reserved
	}
	if available < 0 {
		available = 0
	}
	p.TotalStock = total
	p.AvailableStock = available
}

const forbiddenSKUChars = "*.#$[]/"

// NormalizeSKU strips the characters a SKU may not carry as a store key.
func NormalizeSKU(raw string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenSKUChars, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}
