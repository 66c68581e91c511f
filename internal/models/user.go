package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/validation"
)

// SalesRep is the static part of a sales representative profile.
type SalesRep struct {
	ID                string          `json:"id" validate:"required"`
	Email             string          `json:"email" validate:"required,email"`
	Name              string          `json:"name" validate:"required"`
	Title             string          `json:"title,omitempty"`
	Region            string          `json:"region,omitempty"`
	City              string          `json:"city,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Territory         []string        `json:"territory,omitempty"`
	ExperienceYears   int             `json:"experience_years,omitempty" validate:"gte=0"`
	SalesTargetAnnual decimal.Decimal `json:"sales_target_annual" validate:"gte=0"`
	CommissionRate    decimal.Decimal `json:"commission_rate" validate:"gte=0,lte=1"`
}

// UserProfile is stored at /users/{userId}.
type UserProfile struct {
	SalesRep
	Role              enums.Role      `json:"role,omitempty"`
	TotalClients      int             `json:"total_clients" validate:"gte=0"`
	TotalQuotes       int             `json:"total_quotes" validate:"gte=0"`
	TotalProjects     int             `json:"total_projects" validate:"gte=0"`
	TotalSalesYTD     decimal.Decimal `json:"total_sales_ytd" validate:"gte=0"`
	TargetAchievement decimal.Decimal `json:"target_achievement" validate:"gte=0"`
	LastActivity      time.Time       `json:"last_activity,omitzero"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	UpdatedBy         string          `json:"updated_by,omitempty"`
}

func (u *UserProfile) Validate() error {
	if err := validation.Struct(u); err != nil {
		return err
	}
	if u.Role != "" && !u.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"role": "is not a known role"})
	}
	return nil
}

// TargetAchievementPct returns sales as a percentage of the annual target, rounded to 2 dp.
func TargetAchievementPct(sales, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return Round2(sales.Div(target).Mul(hundred))
}
