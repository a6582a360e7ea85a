// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Backend Client Metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests to the delivery backend",
		},
		[]string{"endpoint", "result"}, // result: "success", "error"
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Delivery backend request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"endpoint"},
	)

	BackendRecordsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_records_rejected_total",
			Help: "Backend records dropped because they failed validation",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Terminal Catalog Metrics
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_catalog_fetches_total",
			Help: "Terminal catalog loads by outcome",
		},
		[]string{"result"}, // result: "hit", "fetched", "failed"
	)

	CatalogTerminals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terminal_catalog_renderable",
			Help: "Number of renderable terminals in the cached catalog",
		},
	)

	// Heat Map Metrics
	HeatMapSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "heatmap_sessions",
			Help: "Current number of open heat map sessions",
		},
	)

	HeatMapEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatmap_events_total",
			Help: "Heat map events dispatched by type and outcome",
		},
		[]string{"event", "result"}, // result: "applied", "rejected"
	)

	HeatMapStaleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatmap_stale_responses_total",
			Help: "Fetch results discarded because a newer request was issued",
		},
		[]string{"resource"},
	)

	HeatMapFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatmap_fetch_failures_total",
			Help: "Failed heat map fetches that degraded to an empty result",
		},
		[]string{"resource"},
	)

	HeatMapAggregatedPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heatmap_aggregated_points",
			Help:    "Number of aggregation buckets produced per order fetch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	HeatMapRadiusSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "heatmap_radius_points_skipped_total",
			Help: "Order points excluded from radius filtering due to malformed coordinates",
		},
	)

	// Notification Metrics
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Transient user notifications published",
		},
		[]string{"level"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "WebSocket messages dropped because a buffer was full",
		},
	)

	WSRendersCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_renders_coalesced_total",
			Help: "Pending renders replaced by newer props before delivery",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackendRequest records one call to the delivery backend.
func RecordBackendRequest(endpoint string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	BackendRequestsTotal.WithLabelValues(endpoint, result).Inc()
	BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordHeatMapEvent counts a dispatched event.
func RecordHeatMapEvent(event string, applied bool) {
	result := "applied"
	if !applied {
		result = "rejected"
	}
	HeatMapEvents.WithLabelValues(event, result).Inc()
}
