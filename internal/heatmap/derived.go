// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import (
	"math"

	"github.com/tomtom215/deliveryheat/internal/geo"
	"github.com/tomtom215/deliveryheat/internal/models"
)

// Intensity maps an order count to a heat weight in [0, 1]. It saturates at
// two orders.
func Intensity(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(float64(count)*0.5, 1.0)
}

// HeatMapData converts every point to a weighted heat point.
func HeatMapData(points []models.OrderLocationPoint) []models.HeatPoint {
	out := make([]models.HeatPoint, len(points))
	for i := range points {
		out[i] = models.HeatPoint{Lat: points[i].Lat, Lon: points[i].Lon, Intensity: Intensity(points[i].Count)}
	}
	return out
}

// TerminalMarkers keeps the terminals that may be drawn and maps them to markers.
func TerminalMarkers(terminals []models.Terminal, capital string) []models.TerminalMarker {
	out := make([]models.TerminalMarker, 0, len(terminals))
	for i := range terminals {
		t := &terminals[i]
		if !t.IsRenderable(capital) {
			continue
		}
		out = append(out, models.TerminalMarker{ID: t.ID, Name: t.Name, Lat: *t.Lat, Lon: *t.Lon})
	}
	return out
}

// FilteredOrderMarkers returns the order markers to draw. With a radius
// active it is the radius filter output whatever ShowOrderClusters says;
// otherwise it is every point when clusters are shown and nothing when not.
func FilteredOrderMarkers(s *State, points []models.OrderLocationPoint, filter *geo.RadiusFilter) geo.FilterResult {
	if s.ShowDeliveryRadius && s.RadiusPoint != nil {
		return filter.Apply(points, s.RadiusPoint, s.RadiusKm)
	}
	if s.ShowOrderClusters {
		return geo.FilterByRadius(points, nil, 0)
	}
	return geo.FilterResult{Points: []models.OrderLocationPoint{}}
}

// AggregateStats sums the statistics. It returns nil for an empty list.
func AggregateStats(stats []models.TerminalDeliveryStat) *models.AggregatedStats {
	if len(stats) == 0 {
		return nil
	}
	agg := &models.AggregatedStats{TotalTerminals: len(stats)}
	for i := range stats {
		agg.TotalOrders += stats[i].TotalOrders
	}
	return agg
}

// memo caches derived views between renders. Each entry is keyed by the
// versions of the data it was computed from.
type memo struct {
	heatVersion uint64
	heat        []models.HeatPoint

	markersVersion uint64
	markers        []models.TerminalMarker

	filterKey filterKey
	filtered  geo.FilterResult

	searchKey searchKey
	search    []models.TerminalMarker
}

type filterKey struct {
	ordersVersion uint64
	radius        bool
	clusters      bool
	center        models.LatLon
	km            float64
}

type searchKey struct {
	terminalsVersion uint64
	query            string
}

func newFilterKey(s *State, ordersVersion uint64) filterKey {
	k := filterKey{
		ordersVersion: ordersVersion,
		radius:        s.ShowDeliveryRadius && s.RadiusPoint != nil,
		clusters:      s.ShowOrderClusters,
	}
	if k.radius {
		k.center = *s.RadiusPoint
		k.km = s.RadiusKm
	}
	return k
}
