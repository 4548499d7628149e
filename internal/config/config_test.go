package config

import (
	"reflect"
	"testing"
	"time"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"http://localhost:5173", []string{"http://localhost:5173"}},
		{" http://a.com , ,http://b.com ", []string{"http://a.com", "http://b.com"}},
	}
	for _, tt := range tests {
		if got := parseOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KPI_CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.KPICacheTTL != 90*time.Second {
		t.Errorf("KPICacheTTL = %v", cfg.KPICacheTTL)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location = %v", cfg.Location())
	}
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.FinanceKPIKey("10/2026"); got != "finance:kpis:10/2026" {
		t.Errorf("FinanceKPIKey = %q", got)
	}
	if got := CacheKey.FinanceEventsChannel(); got != "finance:events" {
		t.Errorf("FinanceEventsChannel = %q", got)
	}
}
