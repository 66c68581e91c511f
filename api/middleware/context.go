package middleware

import (
	"context"

	pkgAuth "github.com/turboairmx/quotesync/pkg/auth"
)

type contextKey string

const ctxClaims contextKey = "caller_claims"

// ClaimsFromContext returns the caller claims set by Auth, or nil.
func ClaimsFromContext(ctx context.Context) *pkgAuth.CallerClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgAuth.CallerClaims); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UID
	}
	return ""
}

// WithClaims injects caller claims into the context.
func WithClaims(ctx context.Context, claims *pkgAuth.CallerClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}
