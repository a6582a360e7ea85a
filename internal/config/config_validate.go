// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package config

import (
	"fmt"
	"net/url"

	"golang.org/x/text/language"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateBackend,
		c.validateHeatMap,
		c.validatePrefs,
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateSupervisor,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateBackend() error {
	if err := validateHTTPURL(c.Backend.URL, "BACKEND_URL"); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.RateLimit <= 0 {
		return fmt.Errorf("BACKEND_RATE_LIMIT must be positive, got %v", c.Backend.RateLimit)
	}
	if c.Backend.RateBurst < 1 {
		return fmt.Errorf("BACKEND_RATE_BURST must be at least 1, got %d", c.Backend.RateBurst)
	}
	if c.Backend.BreakerFailureRatio <= 0 || c.Backend.BreakerFailureRatio > 1 {
		return fmt.Errorf("BACKEND_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Backend.BreakerFailureRatio)
	}
	return nil
}

func (c *Config) validateHeatMap() error {
	h := c.HeatMap
	if h.CapitalRegion == "" {
		return fmt.Errorf("HEATMAP_CAPITAL_REGION is required")
	}
	if _, err := language.Parse(h.Locale); err != nil {
		return fmt.Errorf("HEATMAP_LOCALE %q is not a valid BCP 47 tag: %w", h.Locale, err)
	}
	if h.DefaultRadiusKm < 0.5 || h.DefaultRadiusKm > 10 {
		return fmt.Errorf("HEATMAP_DEFAULT_RADIUS_KM must be between 0.5 and 10, got %v", h.DefaultRadiusKm)
	}
	if h.LookbackDays < 1 {
		return fmt.Errorf("HEATMAP_LOOKBACK_DAYS must be at least 1, got %d", h.LookbackDays)
	}
	if h.SearchDebounce < 0 {
		return fmt.Errorf("HEATMAP_SEARCH_DEBOUNCE must not be negative")
	}
	if h.TerminalCacheTTL <= 0 {
		return fmt.Errorf("HEATMAP_TERMINAL_CACHE_TTL must be positive")
	}
	if h.GridThreshold < 0 {
		return fmt.Errorf("HEATMAP_GRID_THRESHOLD must not be negative")
	}
	if h.GridThreshold > 0 && h.GridCellKm <= 0 {
		return fmt.Errorf("HEATMAP_GRID_CELL_KM must be positive when the grid is enabled")
	}
	if h.MaxSessions < 1 {
		return fmt.Errorf("HEATMAP_MAX_SESSIONS must be at least 1, got %d", h.MaxSessions)
	}
	if h.SessionTTL <= 0 {
		return fmt.Errorf("HEATMAP_SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) validatePrefs() error {
	if !c.Prefs.InMemory && c.Prefs.Path == "" {
		return fmt.Errorf("PREFS_PATH is required unless PREFS_IN_MEMORY is set")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_THRESHOLD must be positive")
	}
	if c.Supervisor.FailureDecay <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_DECAY must be positive")
	}
	if c.Supervisor.FailureBackoff <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_BACKOFF must be positive")
	}
	return nil
}

// validateHTTPURL requires an absolute http or https URL with a host.
func validateHTTPURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
