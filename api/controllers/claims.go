package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turboairmx/quotesync/api/middleware"
	"github.com/turboairmx/quotesync/api/responses"
	"github.com/turboairmx/quotesync/api/validators"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/internal/roles"
	"github.com/turboairmx/quotesync/pkg/auth"
	"github.com/turboairmx/quotesync/pkg/logger"
)

const maxUIDLength = 128

type claimsService interface {
	SetUserClaims(ctx context.Context, caller *auth.CallerClaims, uid, role string) (models.CustomClaims, error)
	VerifyUserClaims(ctx context.Context, caller *auth.CallerClaims, uid string) (roles.Identity, error)
	InitializeSuperAdmin(ctx context.Context, token string) (roles.Identity, error)
	AssignDefaultRole(ctx context.Context, caller *auth.CallerClaims) (models.CustomClaims, bool, error)
	GetUserRole(ctx context.Context, caller *auth.CallerClaims, uid string) (roles.RoleInfo, error)
	SyncUserRoles(ctx context.Context, caller *auth.CallerClaims, dryRun bool) (roles.SyncReport, error)
}

type setClaimsBody struct {
	UID  string `json:"uid" validate:"required"`
	Role string `json:"role" validate:"required"`
}

func ClaimsSet(svc claimsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setClaimsBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		uid := validators.SanitizeString(body.UID, maxUIDLength)
		claims, err := svc.SetUserClaims(r.Context(), middleware.ClaimsFromContext(r.Context()), uid, body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"success": true,
			"message": "Role " + claims.Role + " assigned to user " + uid,
			"claims":  claims,
		})
	}
}

// ClaimsVerify returns the claims of {uid}, or of the caller when no uid is routed.
func ClaimsVerify(svc claimsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := validators.SanitizeString(chi.URLParam(r, "uid"), maxUIDLength)
		identity, err := svc.VerifyUserClaims(r.Context(), middleware.ClaimsFromContext(r.Context()), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, identity)
	}
}

type initSuperAdminBody struct {
	Token string `json:"token" validate:"required"`
}

func ClaimsInitSuperAdmin(svc claimsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body initSuperAdminBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		identity, err := svc.InitializeSuperAdmin(r.Context(), body.Token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"success": true,
			"message": "SuperAdmin role initialized successfully",
			"userId":  identity.UID,
			"email":   identity.Email,
		})
	}
}

// ClaimsAssignDefault issues the caller's first role claims after sign-up.
func ClaimsAssignDefault(svc claimsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, assigned, err := svc.AssignDefaultRole(r.Context(), middleware.ClaimsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"assigned": assigned,
			"claims":   claims,
		})
	}
}

func ClaimsRole(svc claimsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := validators.SanitizeString(chi.URLParam(r, "uid"), maxUIDLength)
		info, err := svc.GetUserRole(r.Context(), middleware.ClaimsFromContext(r.Context()), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

func ClaimsSync(svc claimsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dryRun, err := validators.ParseQueryBool(r, "dry_run", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.SyncUserRoles(r.Context(), middleware.ClaimsFromContext(r.Context()), dryRun)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
