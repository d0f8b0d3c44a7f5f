package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"DATABASE_URL", "CATALOG_URL", "RATES_URL", "HTTP_PORT", "CATALOG_RETRY_MAX"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.CatalogURL != "https://api.cardvault.io/catalog/v1" {
		t.Errorf("CatalogURL = %q, want default", cfg.CatalogURL)
	}
	if cfg.RatesURL != "https://api.frankfurter.dev/v1" {
		t.Errorf("RatesURL = %q, want default", cfg.RatesURL)
	}
	if cfg.CatalogRetryMax != 5 {
		t.Errorf("CatalogRetryMax = %d, want 5", cfg.CatalogRetryMax)
	}
	if cfg.RateWorkerInterval != 6*time.Hour {
		t.Errorf("RateWorkerInterval = %v, want 6h", cfg.RateWorkerInterval)
	}
	if cfg.SnapshotWorkerInterval != 24*time.Hour {
		t.Errorf("SnapshotWorkerInterval = %v, want 24h", cfg.SnapshotWorkerInterval)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("CATALOG_URL", "https://catalog.example.com")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CATALOG_RETRY_MAX", "10")
	t.Setenv("CATALOG_RETRY_BASE_DELAY", "5s")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.CatalogURL != "https://catalog.example.com" {
		t.Errorf("CatalogURL = %q, want override", cfg.CatalogURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.CatalogRetryMax != 10 {
		t.Errorf("CatalogRetryMax = %d, want 10", cfg.CatalogRetryMax)
	}
	if cfg.CatalogRetryBaseDelay != 5*time.Second {
		t.Errorf("CatalogRetryBaseDelay = %v, want 5s", cfg.CatalogRetryBaseDelay)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("CATALOG_RETRY_MAX", "not-a-number")
	t.Setenv("RATE_WORKER_INTERVAL", "invalid-duration")

	cfg := Load()

	if cfg.CatalogRetryMax != 5 {
		t.Errorf("CatalogRetryMax = %d, want default 5 on invalid input", cfg.CatalogRetryMax)
	}
	if cfg.RateWorkerInterval != 6*time.Hour {
		t.Errorf("RateWorkerInterval = %v, want default 6h on invalid input", cfg.RateWorkerInterval)
	}
}
