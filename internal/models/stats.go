// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package models

// TerminalDeliveryStat is the server-side delivery summary for one terminal.
// Fastest and slowest order ids are kept for deep links to the order page.
type TerminalDeliveryStat struct {
	TerminalID             string  `json:"terminal_id" validate:"required"`
	TerminalName           string  `json:"terminal_name"`
	TotalOrders            int     `json:"total_orders" validate:"gte=0"`
	AvgDeliveryMinutes     float64 `json:"avg_delivery_time"`
	FastestDeliveryMinutes float64 `json:"fastest_delivery_time"`
	SlowestDeliveryMinutes float64 `json:"slowest_delivery_time"`
	FastestOrderID         string  `json:"fastest_order_id,omitempty"`
	SlowestOrderID         string  `json:"slowest_order_id,omitempty"`
}

// AggregatedStats totals the delivery stats of the selected terminals.
type AggregatedStats struct {
	TotalOrders    int `json:"total_orders"`
	TotalTerminals int `json:"total_terminals"`
}
