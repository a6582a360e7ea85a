// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package geo

import (
	"math"
	"sort"

	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/models"
)

// Radius bounds in kilometers.
const (
	MinRadiusKm     = 0.5
	MaxRadiusKm     = 10.0
	DefaultRadiusKm = 3.0
)

// ClampRadius bounds km to [MinRadiusKm, MaxRadiusKm].
func ClampRadius(km float64) float64 {
	switch {
	case math.IsNaN(km):
		return DefaultRadiusKm
	case km < MinRadiusKm:
		return MinRadiusKm
	case km > MaxRadiusKm:
		return MaxRadiusKm
	default:
		return km
	}
}

// FilterResult is the output of a radius filter.
type FilterResult struct {
	Points []models.OrderLocationPoint

	// OrdersInRadius is the sum of Count over Points.
	OrdersInRadius int

	// Skipped counts points whose distance could not be computed.
	Skipped int
}

// FilterByRadius keeps the points whose Haversine distance to center is at
// most radiusKm, preserving input order. A nil center disables filtering and
// returns every point. Points with malformed coordinates are logged and
// excluded; the remaining points are still processed.
func FilterByRadius(points []models.OrderLocationPoint, center *models.LatLon, radiusKm float64) FilterResult {
	if center == nil {
		return passthrough(points)
	}

	res := FilterResult{Points: make([]models.OrderLocationPoint, 0, len(points))}
	for i := range points {
		keep(&res, *center, &points[i], radiusKm)
	}
	return res
}

func passthrough(points []models.OrderLocationPoint) FilterResult {
	res := FilterResult{Points: points}
	for i := range points {
		res.OrdersInRadius += points[i].Count
	}
	return res
}

func keep(res *FilterResult, center models.LatLon, p *models.OrderLocationPoint, radiusKm float64) {
	d, err := distanceTo(center, p)
	if err != nil {
		res.Skipped++
		logging.Warn().Err(err).
			Str("order_id", p.OrderID).
			Float64("lat", p.Lat).
			Float64("lon", p.Lon).
			Msg("excluding order point from radius filter")
		return
	}
	if d <= radiusKm {
		res.Points = append(res.Points, *p)
		res.OrdersInRadius += p.Count
	}
}

// RadiusFilter switches from a linear scan to a grid prefilter once the point
// set grows past GridThreshold. Both paths return the same points in the same
// order.
type RadiusFilter struct {
	GridThreshold int
	CellSizeKm    float64
}

// NewRadiusFilter returns a filter with the given grid settings.
// A non-positive threshold disables the grid.
func NewRadiusFilter(gridThreshold int, cellSizeKm float64) *RadiusFilter {
	return &RadiusFilter{GridThreshold: gridThreshold, CellSizeKm: cellSizeKm}
}

// Apply filters points around center. See FilterByRadius.
func (f *RadiusFilter) Apply(points []models.OrderLocationPoint, center *models.LatLon, radiusKm float64) FilterResult {
	if center == nil || f == nil || f.GridThreshold <= 0 || len(points) < f.GridThreshold {
		return FilterByRadius(points, center, radiusKm)
	}

	grid := NewGrid(points, f.CellSizeKm)
	candidates, ok := grid.Candidates(*center, radiusKm)
	if !ok {
		return FilterByRadius(points, center, radiusKm)
	}

	// Rejected points are re-run through keep so they are logged and counted
	// exactly as in the linear scan.
	candidates = append(candidates, grid.Rejected()...)
	sort.Ints(candidates)

	res := FilterResult{Points: make([]models.OrderLocationPoint, 0, len(candidates))}
	for _, idx := range candidates {
		keep(&res, *center, &points[idx], radiusKm)
	}
	return res
}
