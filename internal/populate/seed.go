// Package populate generates a synthetic but internally consistent sales
// dataset: catalog, sales reps, clients, quotes and projects.
package populate

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/internal/models"
	"go.uber.org/multierr"
)

//go:embed seed.json
var defaultSeed []byte

// ClientTemplate is a client archetype. Company may contain {city}.
type ClientTemplate struct {
	Company       string          `json:"company"`
	ContactRole   string          `json:"contact_role"`
	BusinessType  string          `json:"business_type"`
	Employees     int             `json:"employees"`
	AnnualRevenue decimal.Decimal `json:"annual_revenue"`
}

// Seed is the fixed material the generator draws from.
type Seed struct {
	SalesTeam       []models.SalesRep `json:"sales_team"`
	ClientTemplates []ClientTemplate  `json:"client_templates"`
	Products        []models.Product  `json:"products"`
	ContactNames    []string          `json:"contact_names"`
	AreaCodes       []string          `json:"area_codes"`
	Streets         []string          `json:"streets"`
	Colonies        []string          `json:"colonies"`
	QuoteNotes      []string          `json:"quote_notes"`
	ProjectNames    []string          `json:"project_names"`
}

// DefaultSeed returns the bundled TurboAir Mexico dataset.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// ParseSeed decodes and checks a seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Seed) validate() error {
	var errs error
	if len(s.SalesTeam) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("seed has no sales team"))
	}
	if len(s.ClientTemplates) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("seed has no client templates"))
	}
	for i := range s.SalesTeam {
		rep := &s.SalesTeam[i]
		if err := validateRep(rep); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sales rep %d: %w", i, err))
		}
	}
	var equipment, spares int
	for i := range s.Products {
		p := &s.Products[i]
		p.Key = p.SKU
		if err := p.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("product %d: %w", i, err))
			continue
		}
		if p.IsSparePart() {
			spares++
		} else {
			equipment++
		}
	}
	if equipment == 0 || spares == 0 {
		errs = multierr.Append(errs, fmt.Errorf("seed needs both equipment and spare parts"))
	}
	for name, list := range map[string][]string{
		"contact_names": s.ContactNames,
		"area_codes":    s.AreaCodes,
		"streets":       s.Streets,
		"colonies":      s.Colonies,
		"quote_notes":   s.QuoteNotes,
		"project_names": s.ProjectNames,
	} {
		if len(list) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("seed has no %s", name))
		}
	}
	return errs
}

func validateRep(rep *models.SalesRep) error {
	if len(rep.Territory) == 0 {
		return fmt.Errorf("%s has no territory", rep.ID)
	}
	profile := models.UserProfile{SalesRep: *rep}
	return profile.Validate()
}

// Catalog indexes the seed products by SKU.
func (s *Seed) Catalog() map[string]models.Product {
	out := make(map[string]models.Product, len(s.Products))
	for _, p := range s.Products {
		out[p.SKU] = p
	}
	return out
}
