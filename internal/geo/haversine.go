// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package geo implements great-circle distance and the delivery-radius filter
// applied to aggregated order points.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"

	"github.com/tomtom215/deliveryheat/internal/models"
)

// EarthRadiusKm is the mean Earth radius used for every distance in the service.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned for non-finite or out-of-range coordinates.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Haversine returns the great-circle distance in kilometers between two
// points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ValidateFinite checks only that lat and lon are finite. A map click on a
// wrapped world copy yields a longitude outside [-180, 180], which Haversine
// still measures correctly.
func ValidateFinite(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return fmt.Errorf("%w: lat=%v lon=%v is not finite", ErrInvalidCoordinate, lat, lon)
	}
	return nil
}

// ValidateCoordinate checks that lat and lon are finite WGS84 degrees.
func ValidateCoordinate(lat, lon float64) error {
	if err := ValidateFinite(lat, lon); err != nil {
		return err
	}
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return fmt.Errorf("%w: lat=%v lon=%v out of range", ErrInvalidCoordinate, lat, lon)
	}
	return nil
}

// distanceTo computes the distance from center to p. A non-finite coordinate
// or a panic inside the computation is reported as an error.
func distanceTo(center models.LatLon, p *models.OrderLocationPoint) (d float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("distance computation panicked: %v", r)
		}
	}()

	if err := ValidateCoordinate(p.Lat, p.Lon); err != nil {
		return 0, err
	}
	d = Haversine(center.Lat, center.Lon, p.Lat, p.Lon)
	if math.IsNaN(d) {
		return 0, fmt.Errorf("%w: distance is NaN", ErrInvalidCoordinate)
	}
	return d, nil
}
