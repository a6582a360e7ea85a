// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package config loads DeliveryHeat configuration.
//
// Sources are layered with Koanf, later layers winning:
//
//  1. built-in defaults (defaultConfig)
//  2. an optional YAML file (CONFIG_PATH or one of DefaultConfigPaths)
//  3. environment variables, after an optional .env file has been loaded
//
// Every value is validated before the Config is returned.
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Backend    BackendConfig    `koanf:"backend"`
	HeatMap    HeatMapConfig    `koanf:"heatmap"`
	Prefs      PrefsConfig      `koanf:"prefs"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// BackendConfig describes the REST backend that owns terminals and orders.
type BackendConfig struct {
	URL      string        `koanf:"url"`
	APIToken string        `koanf:"api_token"`
	Timeout  time.Duration `koanf:"timeout"`

	// RateLimit is the steady request rate per second towards the backend.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// Circuit breaker settings.
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// HeatMapConfig tunes the heat map views.
type HeatMapConfig struct {
	CapitalRegion    string        `koanf:"capital_region"`
	Locale           string        `koanf:"locale"`
	DefaultRadiusKm  float64       `koanf:"default_radius_km"`
	LookbackDays     int           `koanf:"lookback_days"`
	SearchDebounce   time.Duration `koanf:"search_debounce"`
	TerminalCacheTTL time.Duration `koanf:"terminal_cache_ttl"`

	// GridThreshold is the point count from which the radius filter uses a
	// spatial grid. Zero disables the grid.
	GridThreshold int     `koanf:"grid_threshold"`
	GridCellKm    float64 `koanf:"grid_cell_km"`

	MaxSessions int           `koanf:"max_sessions"`
	SessionTTL  time.Duration `koanf:"session_ttl"`
}

// PrefsConfig selects the storage of persisted panel flags.
type PrefsConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings for the HTTP API.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig tunes restart behaviour of the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
}
