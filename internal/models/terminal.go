// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package models

// DefaultCapitalRegion is the region tag of terminals shown on the map.
const DefaultCapitalRegion = "capital"

// Terminal is a physical branch location as returned by the backend.
//
// Optional attributes are pointers: nil means the backend did not send the
// field, which is treated as "unknown" rather than false or empty.
type Terminal struct {
	ID     string   `json:"id" validate:"required"`
	Name   string   `json:"name"`
	Lat    *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lon    *float64 `json:"lon,omitempty" validate:"omitempty,longitude"`
	Active *bool    `json:"is_active,omitempty"`
	Region *string  `json:"region,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (t *Terminal) HasCoordinates() bool {
	return t.Lat != nil && t.Lon != nil
}

// IsRenderable reports whether the terminal may be drawn on the map and take
// part in radius filtering: coordinates present, active true or unknown, and
// region equal to capital or unknown.
func (t *Terminal) IsRenderable(capital string) bool {
	if !t.HasCoordinates() {
		return false
	}
	if t.Active != nil && !*t.Active {
		return false
	}
	if t.Region != nil && *t.Region != capital {
		return false
	}
	return true
}

// TerminalMarker is the render form of an eligible terminal.
type TerminalMarker struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
