// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/deliveryheat/internal/config"
	"github.com/tomtom215/deliveryheat/internal/logging"
)

//nolint:gochecknoinits // quiet logs for the whole package
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}
	return port
}

func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Backend: config.BackendConfig{
			URL:                 backendURL,
			Timeout:             time.Second,
			RateLimit:           100,
			RateBurst:           100,
			BreakerMaxRequests:  1,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		HeatMap: config.HeatMapConfig{
			CapitalRegion:    "capital",
			Locale:           "ru",
			DefaultRadiusKm:  3,
			LookbackDays:     7,
			SearchDebounce:   10 * time.Millisecond,
			TerminalCacheTTL: time.Minute,
			GridCellKm:       1,
			MaxSessions:      10,
			SessionTTL:       time.Minute,
		},
		Prefs:  config.PrefsConfig{InMemory: true},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: freePort(t), Timeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
		},
		Supervisor: config.SupervisorConfig{FailureThreshold: 5, FailureDecay: 30, FailureBackoff: 50 * time.Millisecond},
	}
}

func TestNewApp_ServesHealth(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer backend.Close()

	a, err := newApp(testConfig(t, backend.URL))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer func() {
		if err := a.close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestApp_TreeLifecycle(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer backend.Close()

	cfg := testConfig(t, backend.URL)
	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := a.tree.ServeBackground(ctx)

	url := fmt.Sprintf("http://%s/api/v1/health/live", cfg.Server.Addr())
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(url) //nolint:noctx // test polling
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("live status = %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
	if err := a.close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
