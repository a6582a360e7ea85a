// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package aggregate

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/deliveryheat/internal/backend"
	"github.com/tomtom215/deliveryheat/internal/models"
)

func f(v float64) *float64 { return &v }

func order(id string, lat, lon *float64) models.RawOrderLocation {
	return models.RawOrderLocation{ID: id, ToLat: lat, ToLon: lon, ToAddress: "addr " + id, Status: "new", TerminalID: "t1"}
}

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []models.RawOrderLocation
		want    []models.OrderLocationPoint
	}{
		{
			name: "collisions counted and first record wins",
			records: []models.RawOrderLocation{
				order("1", f(55.75), f(37.61)),
				order("2", f(55.75), f(37.61)),
				order("3", f(55.76), f(37.62)),
			},
			want: []models.OrderLocationPoint{
				{Lat: 55.75, Lon: 37.61, Count: 2, OrderID: "1", Address: "addr 1", Status: "new", TerminalID: "t1"},
				{Lat: 55.76, Lon: 37.62, Count: 1, OrderID: "3", Address: "addr 3", Status: "new", TerminalID: "t1"},
			},
		},
		{
			name: "missing coordinates discarded",
			records: []models.RawOrderLocation{
				order("1", nil, f(37.61)),
				order("2", f(55.75), nil),
				order("3", nil, nil),
			},
			want: []models.OrderLocationPoint{},
		},
		{
			name: "nearly equal coordinates stay apart",
			records: []models.RawOrderLocation{
				order("1", f(55.75), f(37.61)),
				order("2", f(55.750001), f(37.61)),
			},
			want: []models.OrderLocationPoint{
				{Lat: 55.75, Lon: 37.61, Count: 1, OrderID: "1", Address: "addr 1", Status: "new", TerminalID: "t1"},
				{Lat: 55.750001, Lon: 37.61, Count: 1, OrderID: "2", Address: "addr 2", Status: "new", TerminalID: "t1"},
			},
		},
		{
			name: "first seen order preserved",
			records: []models.RawOrderLocation{
				order("1", f(2), f(2)),
				order("2", f(1), f(1)),
				order("3", f(2), f(2)),
			},
			want: []models.OrderLocationPoint{
				{Lat: 2, Lon: 2, Count: 2, OrderID: "1", Address: "addr 1", Status: "new", TerminalID: "t1"},
				{Lat: 1, Lon: 1, Count: 1, OrderID: "2", Address: "addr 2", Status: "new", TerminalID: "t1"},
			},
		},
		{
			name:    "empty input",
			records: nil,
			want:    []models.OrderLocationPoint{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Fold(tt.records)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fold() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFold_CountsSumToValidRecords(t *testing.T) {
	t.Parallel()

	records := []models.RawOrderLocation{
		order("1", f(1), f(1)), order("2", f(1), f(1)), order("3", nil, f(1)),
		order("4", f(3), f(4)), order("5", f(1), f(1)),
	}
	total := 0
	for _, p := range Fold(records) {
		if p.Count < 1 {
			t.Errorf("point with count %d", p.Count)
		}
		total += p.Count
	}
	if total != 4 {
		t.Errorf("sum of counts = %d, want 4", total)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	if got := Key(55.75, -37.5); got != "55.75,-37.5" {
		t.Errorf("Key() = %q", got)
	}
	if Key(1, 1) == Key(1.0000000001, 1) {
		t.Error("expected distinct keys for distinct coordinates")
	}

	negZero := math.Copysign(0, -1)
	if got := Key(negZero, negZero); got != "0,0" {
		t.Errorf("Key(-0, -0) = %q, want %q", got, "0,0")
	}
}

func TestFold_MergesNegativeZero(t *testing.T) {
	t.Parallel()

	negZero := math.Copysign(0, -1)
	points := Fold([]models.RawOrderLocation{
		order("1", f(0), f(12.5)),
		order("2", f(negZero), f(12.5)),
	})
	if len(points) != 1 || points[0].Count != 2 {
		t.Fatalf("points = %+v, want one bucket of 2", points)
	}
	if points[0].OrderID != "1" {
		t.Errorf("OrderID = %q, want first record", points[0].OrderID)
	}
}

type stubOrders struct {
	records []models.RawOrderLocation
	err     error
	last    backend.OrderQuery
}

func (s *stubOrders) FetchOrderLocations(_ context.Context, q backend.OrderQuery) ([]models.RawOrderLocation, error) {
	s.last = q
	return s.records, s.err
}

func TestAggregator_Fetch(t *testing.T) {
	t.Parallel()

	src := &stubOrders{records: []models.RawOrderLocation{order("1", f(1), f(1)), order("2", f(1), f(1))}}
	agg := New(src, 7)
	agg.now = func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC) }

	points, err := agg.Fetch(context.Background(), []string{"t1", "t2"}, models.DateRange{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(points) != 1 || points[0].Count != 2 {
		t.Errorf("unexpected points: %+v", points)
	}

	if src.last.Range.FromParam() != "2024-03-03" || src.last.Range.ToParam() != "2024-03-10" {
		t.Errorf("default range = %s..%s", src.last.Range.FromParam(), src.last.Range.ToParam())
	}
	if !reflect.DeepEqual(src.last.TerminalIDs, []string{"t1", "t2"}) {
		t.Errorf("TerminalIDs = %v", src.last.TerminalIDs)
	}
}

func TestAggregator_FetchTruncatesBounds(t *testing.T) {
	t.Parallel()

	src := &stubOrders{}
	agg := New(src, 7)

	r := models.DateRange{
		From: time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC),
	}
	if _, err := agg.Fetch(context.Background(), nil, r); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if src.last.Range.FromParam() != "2024-01-05" || src.last.Range.ToParam() != "2024-01-09" {
		t.Errorf("range = %s..%s", src.last.Range.FromParam(), src.last.Range.ToParam())
	}
	if !src.last.Range.From.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From not truncated: %v", src.last.Range.From)
	}
}

func TestAggregator_FetchError(t *testing.T) {
	t.Parallel()

	boom := errors.New("backend down")
	agg := New(&stubOrders{err: boom}, 7)

	if _, err := agg.Fetch(context.Background(), nil, models.DateRange{}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}
