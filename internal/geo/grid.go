// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package geo

import (
	"math"

	"github.com/tomtom215/deliveryheat/internal/models"
)

// kmPerDegree is the length of one degree of latitude on the sphere.
const kmPerDegree = EarthRadiusKm * math.Pi / 180

// DefaultCellSizeKm is used when NewGrid is given a non-positive cell size.
const DefaultCellSizeKm = 1.0

// polarCutoffDeg is the latitude beyond which longitude spans blow up and the
// grid gives up in favour of a full scan.
const polarCutoffDeg = 85.0

type cellKey struct {
	X, Y int
}

// Grid is a spatial hash over a fixed slice of order points. Each cell is
// cellSize degrees on a side and holds indices into the original slice.
// A Grid is immutable once built and safe for concurrent reads.
type Grid struct {
	cells    map[cellKey][]int
	cellSize float64
	rejected []int
	size     int
}

// NewGrid indexes points. Points with invalid coordinates are not placed in
// any cell; their indices are available from Rejected.
func NewGrid(points []models.OrderLocationPoint, cellSizeKm float64) *Grid {
	if cellSizeKm <= 0 {
		cellSizeKm = DefaultCellSizeKm
	}
	g := &Grid{
		cells:    make(map[cellKey][]int),
		cellSize: cellSizeKm / kmPerDegree,
		size:     len(points),
	}

	for i := range points {
		p := &points[i]
		if ValidateCoordinate(p.Lat, p.Lon) != nil {
			g.rejected = append(g.rejected, i)
			continue
		}
		key := g.keyFor(p.Lat, p.Lon)
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

// Len returns the number of points the grid was built from.
func (g *Grid) Len() int { return g.size }

// CellCount returns the number of non-empty cells.
func (g *Grid) CellCount() int { return len(g.cells) }

// Rejected returns indices of points that could not be placed in a cell.
func (g *Grid) Rejected() []int {
	out := make([]int, len(g.rejected))
	copy(out, g.rejected)
	return out
}

func (g *Grid) keyFor(lat, lon float64) cellKey {
	return cellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// Candidates returns the indices of every point that may lie within radiusKm
// of center. The bounding box is exact for the Haversine metric, so no point
// inside the radius is missed. ok is false when the box reaches a pole region
// or crosses the antimeridian; the caller must then scan all points.
func (g *Grid) Candidates(center models.LatLon, radiusKm float64) (idx []int, ok bool) {
	if ValidateCoordinate(center.Lat, center.Lon) != nil || radiusKm < 0 || math.IsNaN(radiusKm) {
		return nil, false
	}

	delta := radiusKm / EarthRadiusKm // angular radius
	if delta >= math.Pi/2 {
		return nil, false
	}
	latSpan := delta * 180 / math.Pi

	maxLat := math.Abs(center.Lat) + latSpan
	if maxLat >= polarCutoffDeg {
		return nil, false
	}

	// For any point within delta: cos(phi1)cos(phi2)sin^2(dLambda/2) <= sin^2(delta/2).
	s := math.Sin(delta/2) / math.Cos(maxLat*math.Pi/180)
	if s >= 1 {
		return nil, false
	}
	lonSpan := 2 * math.Asin(s) * 180 / math.Pi

	const eps = 1e-9
	minLon, maxLon := center.Lon-lonSpan-eps, center.Lon+lonSpan+eps
	if minLon < -180 || maxLon > 180 {
		return nil, false
	}

	lo := g.keyFor(center.Lat-latSpan-eps, minLon)
	hi := g.keyFor(center.Lat+latSpan+eps, maxLon)

	// A box wider than the populated grid is cheaper to scan linearly.
	if (hi.X-lo.X+1)*(hi.Y-lo.Y+1) > 4*len(g.cells)+64 {
		return nil, false
	}

	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			idx = append(idx, g.cells[cellKey{X: x, Y: y}]...)
		}
	}
	return idx, true
}
