// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/deliveryheat/config.yaml",
	"/etc/deliveryheat/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:                 "http://localhost:8000/api",
			Timeout:             15 * time.Second,
			RateLimit:           20,
			RateBurst:           40,
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		HeatMap: HeatMapConfig{
			CapitalRegion:    "capital",
			Locale:           "ru",
			DefaultRadiusKm:  3,
			LookbackDays:     7,
			SearchDebounce:   300 * time.Millisecond,
			TerminalCacheTTL: 10 * time.Minute,
			GridThreshold:    2000,
			GridCellKm:       1,
			MaxSessions:      1000,
			SessionTTL:       2 * time.Hour,
		},
		Prefs: PrefsConfig{
			Path:     "/data/prefs",
			InMemory: false,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3860,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
		},
	}
}

// LoadWithKoanf builds the Config from defaults, the optional YAML file and
// the environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads a .env file into the process environment. Variables that
// are already set are not overwritten. A missing default file is not an error;
// a missing explicit DOTENV_PATH is.
func loadDotEnv() error {
	path, explicit := os.LookupEnv(DotEnvPathEnvVar)
	if !explicit || path == "" {
		path = ".env"
		explicit = false
	}

	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as plain strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower case) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"backend_url":                   "backend.url",
	"backend_api_token":             "backend.api_token",
	"backend_timeout":               "backend.timeout",
	"backend_rate_limit":            "backend.rate_limit",
	"backend_rate_burst":            "backend.rate_burst",
	"backend_breaker_max_requests":  "backend.breaker_max_requests",
	"backend_breaker_interval":      "backend.breaker_interval",
	"backend_breaker_timeout":       "backend.breaker_timeout",
	"backend_breaker_min_requests":  "backend.breaker_min_requests",
	"backend_breaker_failure_ratio": "backend.breaker_failure_ratio",

	"heatmap_capital_region":     "heatmap.capital_region",
	"heatmap_locale":             "heatmap.locale",
	"heatmap_default_radius_km":  "heatmap.default_radius_km",
	"heatmap_lookback_days":      "heatmap.lookback_days",
	"heatmap_search_debounce":    "heatmap.search_debounce",
	"heatmap_terminal_cache_ttl": "heatmap.terminal_cache_ttl",
	"heatmap_grid_threshold":     "heatmap.grid_threshold",
	"heatmap_grid_cell_km":       "heatmap.grid_cell_km",
	"heatmap_max_sessions":       "heatmap.max_sessions",
	"heatmap_session_ttl":        "heatmap.session_ttl",

	"prefs_path":      "prefs.path",
	"prefs_in_memory": "prefs.in_memory",

	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
}

// envTransformFunc maps an environment variable name to a koanf path,
// returning "" for variables that are not configuration.
//
//	BACKEND_URL  -> backend.url
//	HTTP_PORT    -> server.port
//	CORS_ORIGINS -> security.cors_origins
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
