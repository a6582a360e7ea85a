// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package geo

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/tomtom215/deliveryheat/internal/models"
)

func point(lat, lon float64, count int) models.OrderLocationPoint {
	return models.OrderLocationPoint{Lat: lat, Lon: lon, Count: count}
}

func TestFilterByRadius_KeepsPointsWithinRadius(t *testing.T) {
	t.Parallel()

	points := []models.OrderLocationPoint{
		point(0, 0.005, 3), // ~0.56 km
		point(0, 0.02, 1),  // ~2.2 km
	}
	res := FilterByRadius(points, &models.LatLon{Lat: 0, Lon: 0}, 1)

	if len(res.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(res.Points))
	}
	if res.Points[0].Lon != 0.005 {
		t.Errorf("expected the 0.005 point to be kept, got %+v", res.Points[0])
	}
	if res.OrdersInRadius != 3 {
		t.Errorf("OrdersInRadius = %d, want 3", res.OrdersInRadius)
	}
}

func TestFilterByRadius_BoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	p := point(43.25, 76.95, 1)
	d := Haversine(43.2, 76.9, p.Lat, p.Lon)
	res := FilterByRadius([]models.OrderLocationPoint{p}, &models.LatLon{Lat: 43.2, Lon: 76.9}, d)
	if len(res.Points) != 1 {
		t.Errorf("expected point at exactly the radius to be kept")
	}
}

func TestFilterByRadius_NilCenterIsPassthrough(t *testing.T) {
	t.Parallel()

	points := []models.OrderLocationPoint{point(1, 1, 2), point(50, 50, 1)}
	res := FilterByRadius(points, nil, 1)

	if len(res.Points) != 2 {
		t.Errorf("expected all points, got %d", len(res.Points))
	}
	if res.OrdersInRadius != 3 {
		t.Errorf("OrdersInRadius = %d, want 3", res.OrdersInRadius)
	}
}

func TestFilterByRadius_MalformedPointExcluded(t *testing.T) {
	t.Parallel()

	points := []models.OrderLocationPoint{
		point(math.NaN(), 0, 5),
		point(0, 0.001, 2),
		point(0, math.Inf(-1), 1),
		point(0, 0.002, 1),
	}
	res := FilterByRadius(points, &models.LatLon{}, 1)

	if len(res.Points) != 2 {
		t.Fatalf("expected 2 valid points kept, got %d", len(res.Points))
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
	if res.OrdersInRadius != 3 {
		t.Errorf("OrdersInRadius = %d, want 3", res.OrdersInRadius)
	}
}

func TestClampRadius(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{0.1, MinRadiusKm},
		{0.5, 0.5},
		{3, 3},
		{10, 10},
		{25, MaxRadiusKm},
		{math.NaN(), DefaultRadiusKm},
	}
	for _, tt := range tests {
		if got := ClampRadius(tt.in); got != tt.want {
			t.Errorf("ClampRadius(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// randomPoints scatters n points around (lat, lon) within spread degrees.
func randomPoints(seed int64, n int, lat, lon, spread float64) []models.OrderLocationPoint {
	rng := rand.New(rand.NewSource(seed))
	points := make([]models.OrderLocationPoint, n)
	for i := range points {
		points[i] = models.OrderLocationPoint{
			Lat:     lat + (rng.Float64()*2-1)*spread,
			Lon:     lon + (rng.Float64()*2-1)*spread,
			Count:   1 + rng.Intn(4),
			OrderID: strconv.Itoa(i),
		}
	}
	return points
}

func TestRadiusFilter_GridMatchesLinearScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lon float64
		radius   float64
	}{
		{"Almaty 3km", 43.238, 76.889, 3},
		{"Almaty 10km", 43.238, 76.889, 10},
		{"high latitude 5km", 69.0, 33.0, 5},
		{"equator 0.5km", 0.01, 0.01, 0.5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			points := randomPoints(42, 3000, tt.lat, tt.lon, 0.2)
			points = append(points, point(math.NaN(), tt.lon, 1))
			center := &models.LatLon{Lat: tt.lat, Lon: tt.lon}

			want := FilterByRadius(points, center, tt.radius)
			got := NewRadiusFilter(100, 0.5).Apply(points, center, tt.radius)

			if len(got.Points) != len(want.Points) {
				t.Fatalf("grid kept %d points, linear kept %d", len(got.Points), len(want.Points))
			}
			for i := range want.Points {
				if got.Points[i].OrderID != want.Points[i].OrderID {
					t.Fatalf("order mismatch at %d: %s vs %s", i, got.Points[i].OrderID, want.Points[i].OrderID)
				}
			}
			if got.OrdersInRadius != want.OrdersInRadius || got.Skipped != want.Skipped {
				t.Errorf("totals mismatch: grid %+v linear %+v", got, want)
			}
		})
	}
}

func TestGrid_CandidatesFallsBack(t *testing.T) {
	t.Parallel()

	g := NewGrid(randomPoints(1, 200, 0, 179.99, 0.01), 1)

	if _, ok := g.Candidates(models.LatLon{Lat: 0, Lon: 179.99}, 5); ok {
		t.Error("expected fallback when box crosses the antimeridian")
	}
	if _, ok := g.Candidates(models.LatLon{Lat: 89.9, Lon: 0}, 5); ok {
		t.Error("expected fallback near the pole")
	}
	if _, ok := g.Candidates(models.LatLon{Lat: math.NaN(), Lon: 0}, 5); ok {
		t.Error("expected fallback for invalid center")
	}
}

func TestGrid_RejectsInvalidPoints(t *testing.T) {
	t.Parallel()

	g := NewGrid([]models.OrderLocationPoint{point(0, 0, 1), point(100, 0, 1)}, 1)
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if r := g.Rejected(); len(r) != 1 || r[0] != 1 {
		t.Errorf("Rejected() = %v, want [1]", r)
	}
	if g.CellCount() != 1 {
		t.Errorf("CellCount() = %d, want 1", g.CellCount())
	}
}
