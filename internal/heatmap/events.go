// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import "github.com/tomtom215/deliveryheat/internal/models"

// Event is a user interaction. The set of events is closed.
type Event interface {
	// Name is the metric label of the event.
	Name() string
	isEvent()
}

// SelectTerminals replaces the terminal selection.
type SelectTerminals struct{ IDs []string }

// ToggleTerminal adds or removes one terminal from the selection.
type ToggleTerminal struct{ ID string }

// SetDateRange replaces both date bounds at once. A zero bound selects the
// default range.
type SetDateRange struct{ Range models.DateRange }

// SetRadiusPoint sets the delivery radius center.
type SetRadiusPoint struct{ Lat, Lon float64 }

// SetRadiusKm changes the radius. Values are clamped.
type SetRadiusKm struct{ Km float64 }

// CloseRadius leaves radius mode.
type CloseRadius struct{}

// ClearAll resets selection, dates, clusters and radius.
type ClearAll struct{}

// ToggleClusters flips order marker visibility.
type ToggleClusters struct{}

// SetPanels sets the panel flags that are non-nil.
type SetPanels struct{ FiltersVisible, StatsVisible *bool }

// SetSearch sets the terminal search query.
type SetSearch struct{ Query string }

func (SelectTerminals) Name() string { return "select_terminals" }
func (ToggleTerminal) Name() string  { return "toggle_terminal" }
func (SetDateRange) Name() string    { return "set_date_range" }
func (SetRadiusPoint) Name() string  { return "set_radius_point" }
func (SetRadiusKm) Name() string     { return "set_radius_km" }
func (CloseRadius) Name() string     { return "close_radius" }
func (ClearAll) Name() string        { return "clear_all" }
func (ToggleClusters) Name() string  { return "toggle_clusters" }
func (SetPanels) Name() string       { return "set_panels" }
func (SetSearch) Name() string       { return "set_search" }

func (SelectTerminals) isEvent() {}
func (ToggleTerminal) isEvent()  {}
func (SetDateRange) isEvent()    {}
func (SetRadiusPoint) isEvent()  {}
func (SetRadiusKm) isEvent()     {}
func (CloseRadius) isEvent()     {}
func (ClearAll) isEvent()        {}
func (ToggleClusters) isEvent()  {}
func (SetPanels) isEvent()       {}
func (SetSearch) isEvent()       {}
