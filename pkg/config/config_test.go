package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if cfg.Store.Driver != StoreDriverMemory {
		t.Fatalf("expected memory store by default, got %q", cfg.Store.Driver)
	}
	if !cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.16")) {
		t.Fatalf("unexpected tax rate %s", cfg.Pricing.TaxRate)
	}
	if !cfg.Pricing.FreeShippingAbove.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("unexpected free shipping threshold %s", cfg.Pricing.FreeShippingAbove)
	}
	if got := cfg.Pricing.QuoteValidity; got != 30*24*time.Hour {
		t.Fatalf("expected 30 day validity, got %v", got)
	}
	if cfg.Sync.ChunkSize != 100 {
		t.Fatalf("expected chunk size 100, got %d", cfg.Sync.ChunkSize)
	}
	if cfg.Import.Interval != 30*time.Minute {
		t.Fatalf("expected 30m import interval, got %v", cfg.Import.Interval)
	}
	if cfg.Import.HeaderRow != 3 {
		t.Fatalf("expected header row 3, got %d", cfg.Import.HeaderRow)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RTDBRequiresDatabaseURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, StoreDriverRTDB)

	if _, err := Load(); err == nil {
		t.Fatal("expected rtdb driver without database url to fail")
	}

	t.Setenv(EnvStoreDatabaseURL, "https://quotes-default-rtdb.firebaseio.com")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_SequenceNumberingRequiresRedis(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPricingNumbering, NumberingSequence)

	if _, err := Load(); err == nil {
		t.Fatal("expected sequence numbering without redis to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_RejectsNonPositiveChunkSize(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSyncChunkSize, "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected chunk size 0 to be rejected")
	}
}

func TestLoad_RolesInitTokenRules(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvRolesInitToken, "short")
	if _, err := Load(); err == nil {
		t.Fatal("expected a short init token to be rejected")
	}

	t.Setenv(EnvRolesInitToken, "0123456789abcdef")
	if _, err := Load(); err == nil {
		t.Fatal("expected init token without super admin email to be rejected")
	}

	t.Setenv(EnvRolesSuperAdminEmail, "andres@turboairmexico.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Roles.SuperAdminEmail != "andres@turboairmexico.com" {
		t.Fatalf("unexpected super admin email %q", cfg.Roles.SuperAdminEmail)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvJWTIssuer, "quotesync")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func TestImportLocationFallsBackToUTC(t *testing.T) {
	if loc := (ImportConfig{TimeZone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", loc)
	}
}
