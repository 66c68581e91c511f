package enums

import (
	"fmt"
	"strings"
)

// Role is the access role stored on a user profile and mirrored into custom claims.
type Role string

const (
	RoleSuperAdmin  Role = "superadmin"
	RoleAdmin       Role = "admin"
	RoleSales       Role = "sales"
	RoleDistributor Role = "distributor"
)

var validRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleSales,
	RoleDistributor,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole accepts roles case-insensitively so "superAdmin" and "superadmin" agree.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
