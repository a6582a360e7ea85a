// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package models

import "time"

// DateLayout is the calendar-day format sent to the backend.
const DateLayout = "2006-01-02"

// DefaultLookbackDays is the width of the default date range.
const DefaultLookbackDays = 7

// DateRange is an inclusive range of calendar days. A zero bound is unset.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TruncateDay drops the clock part of t in t's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DefaultDateRange returns [now-lookbackDays, now] truncated to days.
func DefaultDateRange(now time.Time, lookbackDays int) DateRange {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	today := TruncateDay(now)
	return DateRange{From: today.AddDate(0, 0, -lookbackDays), To: today}
}

// Normalize replaces the whole range with the default when either bound is
// unset and truncates both bounds to calendar days.
func (r DateRange) Normalize(now time.Time, lookbackDays int) DateRange {
	if r.From.IsZero() || r.To.IsZero() {
		return DefaultDateRange(now, lookbackDays)
	}
	return DateRange{From: TruncateDay(r.From), To: TruncateDay(r.To)}
}

// FromParam formats the lower bound for a query string.
func (r DateRange) FromParam() string { return r.From.Format(DateLayout) }

// ToParam formats the upper bound for a query string.
func (r DateRange) ToParam() string { return r.To.Format(DateLayout) }

// Equal reports whether both bounds are the same instants.
func (r DateRange) Equal(o DateRange) bool {
	return r.From.Equal(o.From) && r.To.Equal(o.To)
}
