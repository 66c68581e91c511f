package middleware

import (
	"net/http"

	"github.com/turboairmx/quotesync/api/responses"
	pkgAuth "github.com/turboairmx/quotesync/pkg/auth"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
)

func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireClaim((*pkgAuth.CallerClaims).IsAdmin, "admin role required", logg)
}

func RequireSuperAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireClaim((*pkgAuth.CallerClaims).IsSuperAdmin, "super admin role required", logg)
}

func requireClaim(allowed func(*pkgAuth.CallerClaims) bool, msg string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !allowed(claims) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
