package roles

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/turboairmx/quotesync/pkg/auth"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
)

const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

type SyncResult struct {
	UID    string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type SyncReport struct {
	DryRun       bool         `json:"dryRun"`
	Results      []SyncResult `json:"results"`
	TotalUsers   int          `json:"totalUsers"`
	SuccessCount int          `json:"successCount"`
	ErrorCount   int          `json:"errorCount"`
}

func (r *SyncReport) add(res SyncResult) {
	r.Results = append(r.Results, res)
	r.TotalUsers++
	if res.Status == SyncStatusSuccess {
		r.SuccessCount++
		return
	}
	r.ErrorCount++
}

// SyncUserRoles re-issues claims for every profile under /users from its
// stored role, distributor when unset. A failing user is recorded in the
// report and the sync moves on; only a cancelled context or an unreadable
// store aborts it. dryRun resolves the roles without issuing anything.
func (s *Service) SyncUserRoles(ctx context.Context, caller *auth.CallerClaims, dryRun bool) (SyncReport, error) {
	if caller == nil || caller.UID == "" {
		return SyncReport{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "request must be authenticated")
	}
	if !caller.IsSuperAdmin() {
		return SyncReport{}, pkgerrors.New(pkgerrors.CodeForbidden, "only super admins can sync user roles")
	}

	report := SyncReport{DryRun: dryRun, Results: []SyncResult{}}
	raw, ok, err := s.store.Read(ctx, UsersRoot)
	if err != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read users")
	}
	users, _ := raw.(map[string]any)
	if !ok || len(users) == 0 {
		return report, nil
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"dry_run": dryRun})
	ctx = s.logg.WithUserID(ctx, caller.UID)
	for _, uid := range slices.Sorted(maps.Keys(users)) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		profile, _ := users[uid].(map[string]any)
		res := SyncResult{UID: uid, Role: enums.RoleDistributor.String(), Status: SyncStatusSuccess}
		res.Email, _ = profile["email"].(string)
		if stored, _ := profile["role"].(string); strings.TrimSpace(stored) != "" {
			res.Role = strings.TrimSpace(stored)
		}

		role, err := enums.ParseRole(res.Role)
		if err == nil && !dryRun {
			err = s.issuer.SetCustomClaims(ctx, uid, ClaimsForRole(role))
		}
		if err != nil {
			res.Status, res.Error = SyncStatusError, err.Error()
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"target_uid": uid, "error": err.Error()}), "role sync failed for user")
		} else {
			res.Role = role.String()
		}
		report.add(res)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"total_users":   report.TotalUsers,
		"success_count": report.SuccessCount,
		"error_count":   report.ErrorCount,
	}), "user role sync completed")
	return report, nil
}
