// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package aggregate folds raw order destinations into weighted map points.
package aggregate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/deliveryheat/internal/backend"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/models"
)

// Key returns the bucket key of a coordinate pair. Coordinates that differ
// in any digit land in different buckets; negative zero shares the bucket of
// zero.
func Key(lat, lon float64) string {
	// x+0 turns -0 into +0 and leaves every other value unchanged.
	lat, lon = lat+0, lon+0
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

// Fold groups records by exact destination. Records without both destination
// coordinates are skipped. The first record of a bucket supplies its order id,
// address, status and terminal. Buckets keep first-seen order.
func Fold(records []models.RawOrderLocation) []models.OrderLocationPoint {
	index := make(map[string]int, len(records))
	points := make([]models.OrderLocationPoint, 0, len(records))

	for i := range records {
		rec := &records[i]
		if !rec.HasDestination() {
			continue
		}
		key := Key(*rec.ToLat, *rec.ToLon)
		if pos, ok := index[key]; ok {
			points[pos].Count++
			continue
		}
		index[key] = len(points)
		points = append(points, models.OrderLocationPoint{
			Lat:        *rec.ToLat,
			Lon:        *rec.ToLon,
			Count:      1,
			OrderID:    rec.ID,
			Address:    rec.ToAddress,
			Status:     rec.Status,
			TerminalID: rec.TerminalID,
		})
	}
	return points
}

// Source fetches raw order destinations.
type Source interface {
	FetchOrderLocations(ctx context.Context, q backend.OrderQuery) ([]models.RawOrderLocation, error)
}

// Aggregator fetches and folds order locations.
type Aggregator struct {
	source       Source
	lookbackDays int
	now          func() time.Time
}

// New creates an Aggregator. lookbackDays sizes the default date range.
func New(source Source, lookbackDays int) *Aggregator {
	return &Aggregator{source: source, lookbackDays: lookbackDays, now: time.Now}
}

// Fetch returns the aggregated points for the terminals and range.
// No terminal ids means all terminals. A range missing either bound is
// replaced by the default lookback window. Each call stands alone; results
// are never merged with earlier ones.
func (a *Aggregator) Fetch(ctx context.Context, terminalIDs []string, r models.DateRange) ([]models.OrderLocationPoint, error) {
	q := backend.OrderQuery{
		TerminalIDs: terminalIDs,
		Range:       r.Normalize(a.now(), a.lookbackDays),
	}

	records, err := a.source.FetchOrderLocations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch order locations: %w", err)
	}

	points := Fold(records)
	metrics.HeatMapAggregatedPoints.Observe(float64(len(points)))
	logging.Ctx(ctx).Debug().
		Int("records", len(records)).
		Int("points", len(points)).
		Int("terminals", len(terminalIDs)).
		Str("from", q.Range.FromParam()).
		Str("to", q.Range.ToParam()).
		Msg("order locations aggregated")
	return points, nil
}
