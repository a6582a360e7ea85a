// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package models

// RawOrderLocation is one unaggregated record of the order-locations endpoint.
type RawOrderLocation struct {
	ID         string   `json:"id"`
	ToLat      *float64 `json:"to_lat" validate:"omitempty,latitude"`
	ToLon      *float64 `json:"to_lon" validate:"omitempty,longitude"`
	ToAddress  string   `json:"to_address"`
	Status     string   `json:"status"`
	TerminalID string   `json:"terminal_id"`
}

// HasDestination reports whether both destination coordinates are present.
func (r *RawOrderLocation) HasDestination() bool {
	return r.ToLat != nil && r.ToLon != nil
}

// OrderLocationPoint is an aggregation bucket for every order sharing one exact
// destination coordinate pair. The representative fields come from the first
// record folded into the bucket. Count is always at least 1.
type OrderLocationPoint struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Count      int     `json:"count"`
	OrderID    string  `json:"order_id,omitempty"`
	Address    string  `json:"address,omitempty"`
	Status     string  `json:"status,omitempty"`
	TerminalID string  `json:"terminal_id,omitempty"`
}

// LatLon is a WGS84 coordinate in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HeatPoint is one weighted cell of the heat layer.
type HeatPoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Intensity float64 `json:"intensity"`
}
