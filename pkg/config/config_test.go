package config

import (
	"os"
	"testing"
	"time"
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
	if cfg.API.BaseURL != "https://shop.example.test/api" {
		t.Fatalf("unexpected api base url %q", cfg.API.BaseURL)
	}
	if got := cfg.API.Timeout; got != 3*time.Second {
		t.Fatalf("expected api timeout 3s, got %v", got)
	}
	if cfg.LocalStore.Driver != LocalDriverSQLite {
		t.Fatalf("expected default sqlite driver, got %q", cfg.LocalStore.Driver)
	}
	if cfg.Catalog.PageSize != 12 {
		t.Fatalf("expected default page size 12, got %d", cfg.Catalog.PageSize)
	}
	if !cfg.Catalog.FallbackEnabled {
		t.Fatalf("expected fallback to default to enabled")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAPIBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAPIBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_NormalizesAndRejectsDrivers(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvLocalStoreDriver, " Redis ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.LocalStore.Driver != LocalDriverRedis {
		t.Fatalf("expected normalized redis driver, got %q", cfg.LocalStore.Driver)
	}

	t.Setenv(EnvLocalStoreDriver, "floppy")
	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported driver to fail")
	}

	t.Setenv(EnvLocalStoreDriver, LocalDriverPostgres)
	t.Setenv(EnvLocalStoreDSN, "")
	if _, err := Load(); err == nil {
		t.Fatal("expected postgres without dsn to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvAPIBaseURL, "https://shop.example.test/api")
	t.Setenv(EnvAPITimeout, "3s")
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
