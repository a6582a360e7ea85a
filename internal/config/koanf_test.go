// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(DotEnvPathEnvVar, "")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.HeatMap.DefaultRadiusKm != 3 {
		t.Errorf("DefaultRadiusKm = %v, want 3", cfg.HeatMap.DefaultRadiusKm)
	}
	if cfg.HeatMap.LookbackDays != 7 {
		t.Errorf("LookbackDays = %d, want 7", cfg.HeatMap.LookbackDays)
	}
	if cfg.HeatMap.CapitalRegion != "capital" {
		t.Errorf("CapitalRegion = %q, want capital", cfg.HeatMap.CapitalRegion)
	}
	if cfg.HeatMap.SearchDebounce != 300*time.Millisecond {
		t.Errorf("SearchDebounce = %v, want 300ms", cfg.HeatMap.SearchDebounce)
	}
	if cfg.Server.Port != 3860 {
		t.Errorf("Port = %d, want 3860", cfg.Server.Port)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(DotEnvPathEnvVar, "")
	t.Setenv("BACKEND_URL", "https://api.example.com/v2")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HEATMAP_SEARCH_DEBOUNCE", "500ms")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("PREFS_IN_MEMORY", "true")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Backend.URL != "https://api.example.com/v2" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.HeatMap.SearchDebounce != 500*time.Millisecond {
		t.Errorf("SearchDebounce = %v, want 500ms", cfg.HeatMap.SearchDebounce)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if !cfg.Prefs.InMemory {
		t.Error("expected Prefs.InMemory to be true")
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
backend:
  url: http://backend.internal:8080
heatmap:
  capital_region: almaty
  lookback_days: 14
security:
  cors_origins:
    - https://admin.example.com
`)
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv(DotEnvPathEnvVar, "")
	t.Setenv("HEATMAP_LOOKBACK_DAYS", "30")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.HeatMap.CapitalRegion != "almaty" {
		t.Errorf("CapitalRegion = %q, want almaty", cfg.HeatMap.CapitalRegion)
	}
	if cfg.HeatMap.LookbackDays != 30 {
		t.Errorf("expected env to win over file, LookbackDays = %d", cfg.HeatMap.LookbackDays)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://admin.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_DotEnv(t *testing.T) {
	path := writeFile(t, "test.env", "BACKEND_API_TOKEN=from-dotenv\nHTTP_PORT=7000\n")
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(DotEnvPathEnvVar, path)
	// Explicit environment wins over the .env file.
	t.Setenv("HTTP_PORT", "7100")
	// godotenv sets variables directly; register them for cleanup.
	t.Setenv("BACKEND_API_TOKEN", "")
	os.Unsetenv("BACKEND_API_TOKEN")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Backend.APIToken != "from-dotenv" {
		t.Errorf("APIToken = %q, want from-dotenv", cfg.Backend.APIToken)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Port = %d, want 7100", cfg.Server.Port)
	}
}

func TestLoadWithKoanf_MissingExplicitDotEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(DotEnvPathEnvVar, filepath.Join(t.TempDir(), "missing.env"))

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("expected error for missing explicit .env file")
	}
}

func TestLoadWithKoanf_InvalidValue(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(DotEnvPathEnvVar, "")
	t.Setenv("HEATMAP_DEFAULT_RADIUS_KM", "25")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("expected validation error for radius above 10 km")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"BACKEND_URL", "backend.url"},
		{"HTTP_PORT", "server.port"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"HEATMAP_CAPITAL_REGION", "heatmap.capital_region"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
