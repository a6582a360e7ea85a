// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package models

import (
	"fmt"
	"time"
)

// Request bodies accepted by the HTTP and WebSocket surfaces. Each is checked
// with validation.ValidateStruct before use.

// TerminalSelectRequest replaces the terminal selection.
type TerminalSelectRequest struct {
	IDs []string `json:"ids" validate:"max=500,dive,required"`
}

// RadiusPointRequest places the delivery radius center. Any finite pair is
// accepted; the map may report longitudes from a wrapped world copy.
type RadiusPointRequest struct {
	Lat float64 `json:"lat" validate:"finite"`
	Lon float64 `json:"lon" validate:"finite"`
}

// RadiusKmRequest changes the radius. Out of range values are clamped.
type RadiusKmRequest struct {
	Km float64 `json:"km" validate:"finite"`
}

// DateRangeRequest carries calendar days as YYYY-MM-DD. An empty bound
// selects the default range.
type DateRangeRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Range parses the request into a DateRange. Missing bounds stay zero.
func (r DateRangeRequest) Range() (DateRange, error) {
	var out DateRange
	var err error
	if r.From != "" {
		if out.From, err = time.Parse(DateLayout, r.From); err != nil {
			return DateRange{}, fmt.Errorf("parse from: %w", err)
		}
	}
	if r.To != "" {
		if out.To, err = time.Parse(DateLayout, r.To); err != nil {
			return DateRange{}, fmt.Errorf("parse to: %w", err)
		}
	}
	return out, nil
}

// PanelsRequest sets the panel flags that are present.
type PanelsRequest struct {
	FiltersVisible *bool `json:"filters_visible"`
	StatsVisible   *bool `json:"stats_visible"`
}

// SearchRequest is a terminal search query.
type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// OpenSessionRequest seeds a new heat map session, for example from a deep link.
type OpenSessionRequest struct {
	TerminalIDs []string `json:"terminal_ids" validate:"max=500,dive,required"`
	DateRangeRequest
}
