// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package heatmap is the heat map view orchestrator.
//
// Every dashboard session owns one View. User interactions are Events fed to
// a pure Reducer, which returns the next State and the Effects the View must
// carry out: refetching orders or statistics, persisting panel flags and
// notifying the user. Fetches run in goroutines and are tagged with a
// per-resource sequence number; only the result of the most recently issued
// fetch is applied.
//
// Rendering goes through the MapRenderer interface so the core can be driven
// and tested without a map widget.
package heatmap

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/deliveryheat/internal/geo"
	"github.com/tomtom215/deliveryheat/internal/models"
)

// Sentinel errors.
var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrViewClosed       = errors.New("heat map view closed")
	ErrSessionNotFound  = errors.New("heat map session not found")
)

// Mode is the radius state machine state.
type Mode string

const (
	ModeIdle         Mode = "idle"
	ModeRadiusActive Mode = "radius_active"
)

// State is the complete user-controlled state of one view.
type State struct {
	// SelectedTerminalIDs is sorted and free of duplicates. Empty means all terminals.
	SelectedTerminalIDs []string
	DateRange           models.DateRange

	ShowOrderClusters  bool
	ShowDeliveryRadius bool
	RadiusPoint        *models.LatLon
	RadiusKm           float64

	FiltersVisible bool
	StatsVisible   bool

	SearchQuery string
}

// Mode reports whether a delivery radius is active.
func (s *State) Mode() Mode {
	if s.RadiusPoint != nil {
		return ModeRadiusActive
	}
	return ModeIdle
}

// NewState returns the initial state: no selection, the default date range,
// clusters and both panels visible.
func (r Reducer) NewState(now time.Time) State {
	return State{
		SelectedTerminalIDs: []string{},
		DateRange:           models.DefaultDateRange(now, r.LookbackDays),
		ShowOrderClusters:   true,
		RadiusKm:            r.defaultRadius(),
		FiltersVisible:      true,
		StatsVisible:        true,
	}
}

// clone copies the slice and pointer fields so a returned State never
// aliases its input.
func (s State) clone() State {
	out := s
	out.SelectedTerminalIDs = append([]string(nil), s.SelectedTerminalIDs...)
	if out.SelectedTerminalIDs == nil {
		out.SelectedTerminalIDs = []string{}
	}
	if s.RadiusPoint != nil {
		p := *s.RadiusPoint
		out.RadiusPoint = &p
	}
	return out
}

// normalizeIDs sorts ids and drops empties and duplicates.
func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// fetchKey identifies the inputs of the order and statistics fetches.
type fetchKey struct {
	ids string
	rng models.DateRange
}

func (s *State) fetchKey() fetchKey {
	return fetchKey{ids: strings.Join(s.SelectedTerminalIDs, ","), rng: s.DateRange}
}

func (k fetchKey) equal(o fetchKey) bool {
	return k.ids == o.ids && k.rng.Equal(o.rng)
}

func (r Reducer) defaultRadius() float64 {
	if r.DefaultRadiusKm <= 0 {
		return geo.DefaultRadiusKm
	}
	return geo.ClampRadius(r.DefaultRadiusKm)
}
