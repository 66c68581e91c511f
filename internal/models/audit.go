package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/pkg/validation"
)

const (
	AuditActionSetCustomClaims   = "set_custom_claims"
	AuditActionInitSuperAdmin    = "initialize_superadmin"
	AuditActionAssignDefaultRole = "assign_default_role"
)

// CustomClaims are the role flags attached to an identity.
type CustomClaims struct {
	Admin      bool   `json:"admin"`
	SuperAdmin bool   `json:"superAdmin"`
	Role       string `json:"role"`
}

// AuditLog is pushed under /audit_logs for privileged actions.
type AuditLog struct {
	UserID    string       `json:"user_id" validate:"required"`
	Action    string       `json:"action" validate:"required"`
	TargetUID string       `json:"target_uid" validate:"required"`
	Claims    CustomClaims `json:"claims"`
	Timestamp int64        `json:"timestamp" validate:"gt=0"`
}

func (a *AuditLog) Validate() error {
	return validation.Struct(a)
}

// PopulationSummary is written to /population_summary after synthetic seeding.
type PopulationSummary struct {
	PopulatedAt         time.Time       `json:"populated_at"`
	ScriptVersion       string          `json:"script_version" validate:"required"`
	UsersCreated        int             `json:"users_created"`
	ClientsCreated      int             `json:"clients_created"`
	QuotesCreated       int             `json:"quotes_created"`
	ProjectsCreated     int             `json:"projects_created"`
	TotalSalesGenerated decimal.Decimal `json:"total_sales_generated"`
	Currency            string          `json:"currency" validate:"required"`
	RegionsCovered      []string        `json:"regions_covered"`
	AverageSalesPerRep  decimal.Decimal `json:"average_sales_per_rep"`
}

func (s *PopulationSummary) Validate() error {
	return validation.Struct(s)
}
