package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/pkg/validation"
)

// Client is stored at /clients/{repId}/{clientId}.
type Client struct {
	ID                 string          `json:"id" validate:"required"`
	Company            string          `json:"company" validate:"required"`
	ContactName        string          `json:"contact_name,omitempty"`
	Email              string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone              string          `json:"phone,omitempty"`
	Address            string          `json:"address,omitempty"`
	City               string          `json:"city,omitempty"`
	State              string          `json:"state,omitempty"`
	Country            string          `json:"country,omitempty"`
	BusinessType       string          `json:"business_type,omitempty"`
	Employees          int             `json:"employees,omitempty" validate:"gte=0"`
	AnnualRevenue      decimal.Decimal `json:"annual_revenue" validate:"gte=0"`
	Status             string          `json:"status,omitempty"`
	AssignedSalesRepID string          `json:"assigned_sales_rep" validate:"required"`
	Notes              string          `json:"notes,omitempty"`
	TaxID              string          `json:"tax_id,omitempty"`
	PaymentTerms       string          `json:"payment_terms,omitempty"`
	CreditLimit        decimal.Decimal `json:"credit_limit" validate:"gte=0"`
	LastOrderDate      time.Time       `json:"last_order_date,omitzero"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (c *Client) Validate() error {
	return validation.Struct(c)
}
