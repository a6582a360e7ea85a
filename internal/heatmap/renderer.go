// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import (
	"context"

	"github.com/tomtom215/deliveryheat/internal/models"
)

// MapRenderer draws a view. The concrete renderer decides how.
type MapRenderer interface {
	Render(ctx context.Context, sessionID string, props RenderProps) error
}

// RendererFunc adapts a function to MapRenderer.
type RendererFunc func(ctx context.Context, sessionID string, props RenderProps) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, sessionID string, props RenderProps) error {
	return f(ctx, sessionID, props)
}

// NopRenderer discards every render.
var NopRenderer MapRenderer = RendererFunc(func(context.Context, string, RenderProps) error { return nil })

// Loading reports which fetches are in flight.
type Loading struct {
	Orders bool `json:"orders"`
	Stats  bool `json:"stats"`
}

// DateRangeProps is the date range as YYYY-MM-DD strings.
type DateRangeProps struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RenderProps is everything the map widget and its panels need.
type RenderProps struct {
	SessionID string `json:"session_id"`
	Mode      Mode   `json:"mode"`

	HeatMapData     []models.HeatPoint          `json:"heat_map_data"`
	TerminalMarkers []models.TerminalMarker     `json:"terminal_markers"`
	OrderMarkers    []models.OrderLocationPoint `json:"order_markers"`

	ShowOrderClusters   bool           `json:"show_order_clusters"`
	SelectedTerminalIDs []string       `json:"selected_terminal_ids"`
	DateRange           DateRangeProps `json:"date_range"`

	DeliveryRadiusPoint *models.LatLon `json:"delivery_radius_point"`
	DeliveryRadiusKm    float64        `json:"delivery_radius_km"`
	ShowDeliveryRadius  bool           `json:"show_delivery_radius"`
	OrdersInRadius      int            `json:"orders_in_radius"`

	AggregatedStats *models.AggregatedStats       `json:"aggregated_stats"`
	TerminalStats   []models.TerminalDeliveryStat `json:"terminal_stats"`

	FiltersVisible bool `json:"filters_visible"`
	StatsVisible   bool `json:"stats_visible"`

	SearchQuery   string                  `json:"search_query"`
	SearchResults []models.TerminalMarker `json:"search_results"`

	Loading Loading `json:"loading"`
}
