package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/turboairmx/quotesync/pkg/auth"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func mintTestToken(t *testing.T, payload auth.CallerPayload) string {
	t.Helper()
	token, err := auth.MintCallerToken(testJWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	token := mintTestToken(t, auth.CallerPayload{UID: "rep-1", Email: "rep@turboair.mx", Role: enums.RoleSales})

	var uid string
	var role enums.Role
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid = UserIDFromContext(r.Context())
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			role = claims.Role
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if uid != "rep-1" || role != enums.RoleSales {
		t.Fatalf("unexpected claims uid=%q role=%q", uid, role)
	}
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name       string
		mw         func(http.Handler) http.Handler
		payload    *auth.CallerPayload
		wantStatus int
	}{
		{"admin without claims", RequireAdmin(nil), nil, http.StatusUnauthorized},
		{"admin as sales", RequireAdmin(nil), &auth.CallerPayload{UID: "u", Role: enums.RoleSales}, http.StatusForbidden},
		{"admin by flag", RequireAdmin(nil), &auth.CallerPayload{UID: "u", Admin: true}, http.StatusOK},
		{"admin as superadmin", RequireAdmin(nil), &auth.CallerPayload{UID: "u", SuperAdmin: true}, http.StatusOK},
		{"superadmin as admin", RequireSuperAdmin(nil), &auth.CallerPayload{UID: "u", Role: enums.RoleAdmin, Admin: true}, http.StatusForbidden},
		{"superadmin by role", RequireSuperAdmin(nil), &auth.CallerPayload{UID: "u", Role: enums.RoleSuperAdmin}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := tc.mw(okHandler())
			if tc.payload != nil {
				handler = Auth(testJWT, nil)(handler)
			}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.payload != nil {
				req.Header.Set("Authorization", "Bearer "+mintTestToken(t, *tc.payload))
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.wantStatus {
				t.Fatalf("expected %d got %d", tc.wantStatus, resp.Code)
			}
		})
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	handler := RequestID(nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}
