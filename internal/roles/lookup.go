package roles

import (
	"context"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/pkg/auth"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

// Where a reported role came from.
const (
	RoleSourceClaims  = "claims"
	RoleSourceProfile = "profile"
	RoleSourceDefault = "default"
)

type RoleInfo struct {
	UID          string              `json:"userId"`
	Email        string              `json:"email,omitempty"`
	Role         enums.Role          `json:"role"`
	Source       string              `json:"source"`
	CustomClaims models.CustomClaims `json:"customClaims"`
	CreatedAt    time.Time           `json:"creationTime,omitzero"`
	LastSignInAt time.Time           `json:"lastSignInTime,omitzero"`
}

// GetUserRole resolves the effective role of uid, defaulting to the caller.
// Only admins may look at someone else. The claims role wins, then the role
// stored on the profile, then distributor.
func (s *Service) GetUserRole(ctx context.Context, caller *auth.CallerClaims, uid string) (RoleInfo, error) {
	if caller == nil || caller.UID == "" {
		return RoleInfo{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "request must be authenticated")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		uid = caller.UID
	}
	if uid != caller.UID && !caller.IsAdmin() {
		return RoleInfo{}, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions to view user role")
	}
	if err := treestore.ValidateKey(uid); err != nil {
		return RoleInfo{}, err
	}

	id, err := s.lookup(ctx, uid)
	if err != nil {
		return RoleInfo{}, err
	}
	info := RoleInfo{
		UID:          id.UID,
		Email:        id.Email,
		CustomClaims: id.CustomClaims,
		CreatedAt:    id.CreatedAt,
		LastSignInAt: id.LastSignInAt,
		Role:         enums.RoleDistributor,
		Source:       RoleSourceDefault,
	}
	if role, err := enums.ParseRole(id.CustomClaims.Role); id.CustomClaims.Role != "" && err == nil {
		info.Role, info.Source = role, RoleSourceClaims
		return info, nil
	}

	stored, err := s.profileRole(ctx, uid)
	if err != nil {
		return RoleInfo{}, err
	}
	if stored == "" {
		return info, nil
	}
	role, err := enums.ParseRole(stored)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"target_uid": uid, "stored_role": stored}), "ignoring unknown profile role")
		return info, nil
	}
	info.Role, info.Source = role, RoleSourceProfile
	return info, nil
}
