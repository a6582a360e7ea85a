// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package models

import (
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestTerminal_IsRenderable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		terminal Terminal
		want     bool
	}{
		{"all fields valid", Terminal{ID: "1", Lat: ptr(43.2), Lon: ptr(76.9), Active: ptr(true), Region: ptr("capital")}, true},
		{"optional flags unknown", Terminal{ID: "2", Lat: ptr(43.2), Lon: ptr(76.9)}, true},
		{"missing latitude", Terminal{ID: "3", Lon: ptr(76.9)}, false},
		{"missing longitude", Terminal{ID: "4", Lat: ptr(43.2)}, false},
		{"inactive", Terminal{ID: "5", Lat: ptr(43.2), Lon: ptr(76.9), Active: ptr(false)}, false},
		{"other region", Terminal{ID: "6", Lat: ptr(43.2), Lon: ptr(76.9), Region: ptr("region")}, false},
		{"zero coordinates are present", Terminal{ID: "7", Lat: ptr(0.0), Lon: ptr(0.0)}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.terminal.IsRenderable(DefaultCapitalRegion); got != tt.want {
				t.Errorf("IsRenderable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultDateRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 15, 42, 0, 0, time.UTC)
	r := DefaultDateRange(now, 7)

	if got := r.FromParam(); got != "2026-10-11" {
		t.Errorf("From = %s, want 2026-10-11", got)
	}
	if got := r.ToParam(); got != "2026-10-18" {
		t.Errorf("To = %s, want 2026-10-18", got)
	}
	if r.To.Hour() != 0 || r.To.Minute() != 0 {
		t.Errorf("expected To truncated to midnight, got %v", r.To)
	}
}

func TestDateRange_Normalize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	t.Run("missing bound falls back to default", func(t *testing.T) {
		t.Parallel()
		got := DateRange{From: now.AddDate(0, -1, 0)}.Normalize(now, 7)
		if !got.Equal(DefaultDateRange(now, 7)) {
			t.Errorf("Normalize() = %+v, want default range", got)
		}
	})

	t.Run("bounds truncated to days", func(t *testing.T) {
		t.Parallel()
		in := DateRange{
			From: time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC),
			To:   time.Date(2026, 9, 30, 1, 2, 3, 0, time.UTC),
		}
		got := in.Normalize(now, 7)
		if got.FromParam() != "2026-09-01" || got.ToParam() != "2026-09-30" {
			t.Errorf("Normalize() = %s..%s", got.FromParam(), got.ToParam())
		}
		if got.From.Hour() != 0 {
			t.Errorf("expected From at midnight, got %v", got.From)
		}
	})

	t.Run("non-positive lookback uses default width", func(t *testing.T) {
		t.Parallel()
		got := DefaultDateRange(now, 0)
		if got.FromParam() != "2026-10-11" {
			t.Errorf("From = %s, want 2026-10-11", got.FromParam())
		}
	})
}
