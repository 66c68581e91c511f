package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/validation"
)

// Project is stored at /projects/{repId}/{projectId} and tracks the delivery of a large won quote.
type Project struct {
	ID                  string              `json:"id" validate:"required"`
	Name                string              `json:"name" validate:"required"`
	ClientID            string              `json:"client_id" validate:"required"`
	ClientName          string              `json:"client_name,omitempty"`
	RepID               string              `json:"user_id" validate:"required"`
	SalesRep            string              `json:"sales_rep,omitempty"`
	RelatedQuoteID      string              `json:"related_quote_id" validate:"required"`
	Status              enums.ProjectStatus `json:"status" validate:"required"`
	StartDate           time.Time           `json:"start_date"`
	EstimatedCompletion time.Time           `json:"estimated_completion,omitzero"`
	Budget              decimal.Decimal     `json:"budget" validate:"gte=0"`
	Description         string              `json:"description,omitempty"`
	Notes               string              `json:"notes,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func (p *Project) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if !p.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"status": "is not a known project status"})
	}
	return nil
}
