// Package roles manages the role claims attached to user identities and
// mirrors them onto /users profiles.
package roles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/internal/batch"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/pkg/auth"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

const (
	UsersRoot     = "users"
	AuditLogsRoot = "audit_logs"
	// SuperAdminInitPath marks that the one-time bootstrap already ran.
	SuperAdminInitPath = "system/superadmin_initialized"

	// SystemActor stands in for a user id when no person made the change.
	SystemActor = "system"
)

// Identity is an account as the identity provider reports it.
type Identity struct {
	UID          string              `json:"uid"`
	Email        string              `json:"email,omitempty"`
	CustomClaims models.CustomClaims `json:"customClaims"`
	CreatedAt    time.Time           `json:"creationTime,omitzero"`
	LastSignInAt time.Time           `json:"lastSignInTime,omitzero"`
}

// ClaimsIssuer attaches custom claims to identities.
type ClaimsIssuer interface {
	SetCustomClaims(ctx context.Context, uid string, claims models.CustomClaims) error
	Lookup(ctx context.Context, uid string) (Identity, error)
	LookupEmail(ctx context.Context, email string) (Identity, error)
}

type ServiceParams struct {
	Issuer ClaimsIssuer
	Store  treestore.Store
	Sync   *batch.Synchronizer
	Config config.RolesConfig
	Logger *logger.Logger
	Now    func() time.Time
}

type Service struct {
	issuer          ClaimsIssuer
	store           treestore.Store
	sync            *batch.Synchronizer
	superAdminEmail string
	initToken       string
	logg            *logger.Logger
	now             func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Issuer == nil || params.Store == nil || params.Sync == nil {
		return nil, fmt.Errorf("issuer, store and synchronizer required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		issuer:          params.Issuer,
		store:           params.Store,
		sync:            params.Sync,
		superAdminEmail: strings.ToLower(strings.TrimSpace(params.Config.SuperAdminEmail)),
		initToken:       strings.TrimSpace(params.Config.InitToken),
		logg:            logg,
		now:             now,
	}, nil
}

// SystemCaller is the identity one-shot commands act as.
func SystemCaller() *auth.CallerClaims {
	return &auth.CallerClaims{UID: SystemActor, Role: enums.RoleSuperAdmin, SuperAdmin: true}
}

// ClaimsForRole derives the boolean flags a role implies.
func ClaimsForRole(role enums.Role) models.CustomClaims {
	claims := models.CustomClaims{Role: role.String()}
	switch role {
	case enums.RoleSuperAdmin:
		claims.SuperAdmin = true
		claims.Admin = true
	case enums.RoleAdmin:
		claims.Admin = true
	}
	return claims
}

// SetUserClaims assigns role to uid. Only super admins may call it. The
// claims are issued first; the profile role and the audit entry follow.
func (s *Service) SetUserClaims(ctx context.Context, caller *auth.CallerClaims, uid, role string) (models.CustomClaims, error) {
	if caller == nil || caller.UID == "" {
		return models.CustomClaims{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "request must be authenticated")
	}
	if !caller.IsSuperAdmin() {
		return models.CustomClaims{}, pkgerrors.New(pkgerrors.CodeForbidden, "only super admins can set user claims")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return models.CustomClaims{}, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}
	if err := treestore.ValidateKey(uid); err != nil {
		return models.CustomClaims{}, err
	}
	parsed, err := enums.ParseRole(role)
	if err != nil {
		return models.CustomClaims{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}
	claims := ClaimsForRole(parsed)

	ctx = s.logg.WithFields(ctx, map[string]any{"target_uid": uid, "role": claims.Role})
	ctx = s.logg.WithUserID(ctx, caller.UID)
	if err := s.issuer.SetCustomClaims(ctx, uid, claims); err != nil {
		return models.CustomClaims{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set custom claims")
	}

	now := s.now().UTC()
	base := treestore.Join(UsersRoot, uid)
	update := batch.NewUpdate("roles").Atomic(
		batch.Entry{Path: treestore.Join(base, "role"), Value: claims.Role},
		batch.Entry{Path: treestore.Join(base, "updated_at"), Value: now.Format(time.RFC3339Nano)},
		batch.Entry{Path: treestore.Join(base, "updated_by"), Value: caller.UID},
	)
	if _, err := s.sync.Commit(ctx, update); err != nil {
		return claims, err
	}

	if err := s.audit(ctx, caller.UID, models.AuditActionSetCustomClaims, uid, claims, now); err != nil {
		return claims, err
	}
	s.logg.Info(ctx, "custom claims set")
	return claims, nil
}

func (s *Service) audit(ctx context.Context, actor, action, target string, claims models.CustomClaims, at time.Time) error {
	entry := &models.AuditLog{
		UserID:    actor,
		Action:    action,
		TargetUID: target,
		Claims:    claims,
		Timestamp: at.UnixMilli(),
	}
	value, err := models.ToValue(entry)
	if err != nil {
		return err
	}
	if _, err := s.store.Push(ctx, AuditLogsRoot, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write audit log")
	}
	return nil
}

// profileRole reads the role stored on users/{uid}. An empty result means
// the profile or its role is absent.
func (s *Service) profileRole(ctx context.Context, uid string) (string, error) {
	raw, ok, err := s.store.Read(ctx, treestore.Join(UsersRoot, uid, "role"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read profile role")
	}
	if !ok {
		return "", nil
	}
	role, _ := raw.(string)
	return strings.TrimSpace(role), nil
}

func (s *Service) lookup(ctx context.Context, uid string) (Identity, error) {
	id, err := s.issuer.Lookup(ctx, uid)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return Identity{}, err
		}
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}
	return id, nil
}

// VerifyUserClaims reports the claims currently attached to uid, defaulting
// to the caller's own identity.
func (s *Service) VerifyUserClaims(ctx context.Context, caller *auth.CallerClaims, uid string) (Identity, error) {
	if caller == nil || caller.UID == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "request must be authenticated")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		uid = caller.UID
	}
	id, err := s.issuer.Lookup(ctx, uid)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return Identity{}, err
		}
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify user claims")
	}
	return id, nil
}
