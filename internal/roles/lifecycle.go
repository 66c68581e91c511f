package roles

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/internal/batch"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/pkg/auth"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

// InitializeSuperAdmin grants super admin to the configured account. It runs
// once: the marker written alongside the profile makes later calls fail with
// a conflict. Two concurrent first calls are not serialized.
func (s *Service) InitializeSuperAdmin(ctx context.Context, token string) (Identity, error) {
	if s.initToken == "" || s.superAdminEmail == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeForbidden, "super admin bootstrap is disabled")
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.initToken)) != 1 {
		return Identity{}, pkgerrors.New(pkgerrors.CodeForbidden, "invalid init token")
	}
	_, done, err := s.store.Read(ctx, SuperAdminInitPath)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read bootstrap marker")
	}
	if done {
		return Identity{}, pkgerrors.New(pkgerrors.CodeConflict, "super admin already initialized")
	}

	id, err := s.issuer.LookupEmail(ctx, s.superAdminEmail)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return Identity{}, err
		}
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up super admin")
	}
	if err := treestore.ValidateKey(id.UID); err != nil {
		return Identity{}, err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"target_uid": id.UID, "role": enums.RoleSuperAdmin.String()})

	claims := ClaimsForRole(enums.RoleSuperAdmin)
	if err := s.issuer.SetCustomClaims(ctx, id.UID, claims); err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set custom claims")
	}
	id.CustomClaims = claims

	now := s.now().UTC()
	stamp := now.Format(time.RFC3339Nano)
	base := treestore.Join(UsersRoot, id.UID)
	update := batch.NewUpdate("roles").Atomic(
		batch.Entry{Path: treestore.Join(base, "role"), Value: claims.Role},
		batch.Entry{Path: treestore.Join(base, "email"), Value: s.superAdminEmail},
		batch.Entry{Path: treestore.Join(base, "updated_at"), Value: stamp},
		batch.Entry{Path: treestore.Join(base, "updated_by"), Value: SystemActor},
		batch.Entry{Path: SuperAdminInitPath, Value: map[string]any{
			"uid":            id.UID,
			"email":          s.superAdminEmail,
			"initialized_at": stamp,
		}},
	)
	if _, err := s.sync.Commit(ctx, update); err != nil {
		return id, err
	}
	if err := s.audit(ctx, SystemActor, models.AuditActionInitSuperAdmin, id.UID, claims, now); err != nil {
		return id, err
	}
	s.logg.Info(ctx, "super admin initialized")
	return id, nil
}

// AssignDefaultRole gives a newly signed-up caller their first role claims.
// The role comes from the stored profile when one exists, otherwise the
// configured super admin email gets superadmin and everyone else
// distributor. Identities that already carry a role are left alone; the
// boolean reports whether claims were issued.
func (s *Service) AssignDefaultRole(ctx context.Context, caller *auth.CallerClaims) (models.CustomClaims, bool, error) {
	if caller == nil || caller.UID == "" {
		return models.CustomClaims{}, false, pkgerrors.New(pkgerrors.CodeUnauthorized, "request must be authenticated")
	}
	if err := treestore.ValidateKey(caller.UID); err != nil {
		return models.CustomClaims{}, false, err
	}
	id, err := s.lookup(ctx, caller.UID)
	if err != nil {
		return models.CustomClaims{}, false, err
	}
	if id.CustomClaims.Role != "" {
		return id.CustomClaims, false, nil
	}

	stored, err := s.profileRole(ctx, caller.UID)
	if err != nil {
		return models.CustomClaims{}, false, err
	}
	role := enums.RoleDistributor
	if parsed, perr := enums.ParseRole(stored); stored != "" && perr == nil {
		role = parsed
	} else if s.superAdminEmail != "" && strings.EqualFold(strings.TrimSpace(id.Email), s.superAdminEmail) {
		role = enums.RoleSuperAdmin
	}
	claims := ClaimsForRole(role)

	ctx = s.logg.WithFields(ctx, map[string]any{"target_uid": caller.UID, "role": claims.Role})
	if err := s.issuer.SetCustomClaims(ctx, caller.UID, claims); err != nil {
		return models.CustomClaims{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set custom claims")
	}

	now := s.now().UTC()
	if stored == "" {
		base := treestore.Join(UsersRoot, caller.UID)
		update := batch.NewUpdate("roles").Atomic(
			batch.Entry{Path: treestore.Join(base, "role"), Value: claims.Role},
			batch.Entry{Path: treestore.Join(base, "updated_at"), Value: now.Format(time.RFC3339Nano)},
			batch.Entry{Path: treestore.Join(base, "updated_by"), Value: SystemActor},
		)
		if _, err := s.sync.Commit(ctx, update); err != nil {
			return claims, true, err
		}
	}
	if err := s.audit(ctx, SystemActor, models.AuditActionAssignDefaultRole, caller.UID, claims, now); err != nil {
		return claims, true, err
	}
	s.logg.Info(ctx, "default role assigned")
	return claims, true, nil
}
