// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import (
	"context"
	"time"

	"github.com/tomtom215/deliveryheat/internal/models"
)

// SelectTerminals replaces the selection.
func (v *View) SelectTerminals(ctx context.Context, ids []string) error {
	return v.Dispatch(ctx, SelectTerminals{IDs: ids})
}

// ToggleTerminal adds or removes id from the selection.
func (v *View) ToggleTerminal(ctx context.Context, id string) error {
	return v.Dispatch(ctx, ToggleTerminal{ID: id})
}

// SetDateRange replaces both bounds.
func (v *View) SetDateRange(ctx context.Context, r models.DateRange) error {
	return v.Dispatch(ctx, SetDateRange{Range: r})
}

// SetDeliveryRadiusPoint enters radius mode around (lat, lon).
func (v *View) SetDeliveryRadiusPoint(ctx context.Context, lat, lon float64) error {
	return v.Dispatch(ctx, SetRadiusPoint{Lat: lat, Lon: lon})
}

// SetDeliveryRadiusKm changes the radius.
func (v *View) SetDeliveryRadiusKm(ctx context.Context, km float64) error {
	return v.Dispatch(ctx, SetRadiusKm{Km: km})
}

// CloseRadiusPanel leaves radius mode.
func (v *View) CloseRadiusPanel(ctx context.Context) error {
	return v.Dispatch(ctx, CloseRadius{})
}

// ClearAllFilters resets the view filters.
func (v *View) ClearAllFilters(ctx context.Context) error {
	return v.Dispatch(ctx, ClearAll{})
}

// ToggleOrderClusters flips order marker visibility.
func (v *View) ToggleOrderClusters(ctx context.Context) error {
	return v.Dispatch(ctx, ToggleClusters{})
}

// SetPanels sets the panel flags that are non-nil.
func (v *View) SetPanels(ctx context.Context, filtersVisible, statsVisible *bool) error {
	return v.Dispatch(ctx, SetPanels{FiltersVisible: filtersVisible, StatsVisible: statsVisible})
}

// Search applies query after the debounce window. A newer query within the
// window replaces the pending one.
func (v *View) Search(_ context.Context, query string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}

	if v.searchTimer != nil && v.searchTimer.Stop() {
		v.inflight.Done()
	}

	v.inflight.Add(1)
	v.searchTimer = time.AfterFunc(v.deps.SearchDebounce, func() {
		defer v.inflight.Done()
		_ = v.Dispatch(v.ctx, SetSearch{Query: query})
	})
	return nil
}
