// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/deliveryheat/internal/geo"
	"github.com/tomtom215/deliveryheat/internal/models"
	"github.com/tomtom215/deliveryheat/internal/notify"
)

// User-facing messages.
const (
	MsgFiltersCleared     = "All filters cleared"
	MsgInvalidRadiusPoint = "Invalid coordinates for the delivery radius"
	MsgInvalidDateRange   = "The start date must not be after the end date"
	MsgOrdersFailed       = "Failed to load order locations"
	MsgStatsFailed        = "Failed to load delivery statistics"
)

// Effects are the side effects a transition asks the View to perform.
type Effects struct {
	// RefetchOrders and RefetchStats start a new fetch that supersedes any
	// fetch in flight.
	RefetchOrders bool
	RefetchStats  bool

	// ClearStats drops the statistics because the selection became empty.
	ClearStats bool

	// PersistPanels writes the panel flags to the preference store.
	PersistPanels bool

	// Notice is shown to the user. SessionID is filled in by the View.
	Notice *notify.Notification

	// Rejected is set when the event was refused; State is then unchanged.
	Rejected error
}

// Reducer holds the defaults transitions fall back to.
type Reducer struct {
	LookbackDays    int
	DefaultRadiusKm float64
}

// Reduce applies ev to s. It is pure: s is never modified and the result
// shares no memory with it.
func (r Reducer) Reduce(s State, ev Event, now time.Time) (State, Effects) {
	next := s.clone()
	var eff Effects

	switch e := ev.(type) {
	case SelectTerminals:
		next.SelectedTerminalIDs = normalizeIDs(e.IDs)

	case ToggleTerminal:
		next.SelectedTerminalIDs = toggleID(next.SelectedTerminalIDs, strings.TrimSpace(e.ID))

	case SetDateRange:
		rng, err := r.dateRange(e.Range, now)
		if err != nil {
			return s.clone(), Effects{Rejected: err, Notice: &notify.Notification{Level: notify.LevelError, Message: MsgInvalidDateRange}}
		}
		next.DateRange = rng

	case SetRadiusPoint:
		if err := geo.ValidateFinite(e.Lat, e.Lon); err != nil {
			return s.clone(), Effects{Rejected: err, Notice: &notify.Notification{Level: notify.LevelError, Message: MsgInvalidRadiusPoint}}
		}
		next.RadiusPoint = &models.LatLon{Lat: e.Lat, Lon: e.Lon}
		next.ShowDeliveryRadius = true
		if next.FiltersVisible {
			next.FiltersVisible = false
			eff.PersistPanels = true
		}

	case SetRadiusKm:
		next.RadiusKm = geo.ClampRadius(e.Km)

	case CloseRadius:
		next.RadiusPoint = nil
		next.ShowDeliveryRadius = false
		// Leave at least the order markers visible.
		next.ShowOrderClusters = true

	case ClearAll:
		next.SelectedTerminalIDs = []string{}
		next.DateRange = models.DefaultDateRange(now, r.LookbackDays)
		next.ShowOrderClusters = true
		next.RadiusPoint = nil
		next.ShowDeliveryRadius = false
		next.RadiusKm = r.defaultRadius()
		eff.Notice = &notify.Notification{Level: notify.LevelInfo, Message: MsgFiltersCleared}

	case ToggleClusters:
		next.ShowOrderClusters = !next.ShowOrderClusters

	case SetPanels:
		if e.FiltersVisible != nil {
			next.FiltersVisible = *e.FiltersVisible
		}
		if e.StatsVisible != nil {
			next.StatsVisible = *e.StatsVisible
		}
		eff.PersistPanels = next.FiltersVisible != s.FiltersVisible || next.StatsVisible != s.StatsVisible

	case SetSearch:
		next.SearchQuery = strings.TrimSpace(e.Query)

	default:
		return s.clone(), Effects{Rejected: fmt.Errorf("unknown event %T", ev)}
	}

	if !next.fetchKey().equal(s.fetchKey()) {
		eff.RefetchOrders = true
		if len(next.SelectedTerminalIDs) > 0 {
			eff.RefetchStats = true
		} else {
			eff.ClearStats = true
		}
	}
	return next, eff
}

// dateRange validates a requested range. A missing bound selects the
// default range; both bounds are truncated to calendar days.
func (r Reducer) dateRange(req models.DateRange, now time.Time) (models.DateRange, error) {
	rng := req.Normalize(now, r.LookbackDays)
	if rng.From.After(rng.To) {
		return models.DateRange{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDateRange, rng.FromParam(), rng.ToParam())
	}
	return rng, nil
}

func toggleID(ids []string, id string) []string {
	if id == "" {
		return ids
	}
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, id)
	}
	return normalizeIDs(out)
}
