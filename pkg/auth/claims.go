package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/turboairmx/quotesync/pkg/enums"
)

// CallerPayload captures the data available when minting a caller token.
type CallerPayload struct {
	UID        string
	Email      string
	Role       enums.Role
	Admin      bool
	SuperAdmin bool
	JTI        string
}

// CallerClaims carries the role flags a caller presents. They are trusted as
// issued; no further policy is applied beyond the flag checks below.
type CallerClaims struct {
	UID        string     `json:"uid"`
	Email      string     `json:"email,omitempty"`
	Role       enums.Role `json:"role,omitempty"`
	Admin      bool       `json:"admin,omitempty"`
	SuperAdmin bool       `json:"superAdmin,omitempty"`
	jwt.RegisteredClaims
}

// IsSuperAdmin reports whether the caller may manage other users' roles.
func (c *CallerClaims) IsSuperAdmin() bool {
	if c == nil {
		return false
	}
	return c.SuperAdmin || c.Role == enums.RoleSuperAdmin
}

// IsAdmin reports whether the caller may trigger imports and read import logs.
func (c *CallerClaims) IsAdmin() bool {
	if c == nil {
		return false
	}
	return c.Admin || c.Role == enums.RoleAdmin || c.IsSuperAdmin()
}
