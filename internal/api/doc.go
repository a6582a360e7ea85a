// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

/*
Package api exposes the heat map over HTTP and WebSocket using the chi router.

Routes (all under /api/v1):

	GET    /health, /health/live, /health/ready
	GET    /terminals                      filtered, sorted catalog
	GET    /terminals/all                  unfiltered catalog
	POST   /terminals/refresh              drop the cache and reload every session
	POST   /sessions                       open a heat map session
	GET    /sessions/{id}                  current render props
	DELETE /sessions/{id}
	PUT    /sessions/{id}/terminals        {"ids": [...]}
	POST   /sessions/{id}/terminals/{tid}/toggle
	PUT    /sessions/{id}/date-range       {"from": "2024-03-01", "to": "2024-03-07"}
	PUT    /sessions/{id}/radius           {"lat": 55.75, "lon": 37.61}
	PUT    /sessions/{id}/radius/km        {"km": 5}
	DELETE /sessions/{id}/radius
	POST   /sessions/{id}/clear
	POST   /sessions/{id}/clusters/toggle
	PUT    /sessions/{id}/panels           {"filters_visible": true, "stats_visible": false}
	PUT    /sessions/{id}/search           {"query": "..."}
	GET    /sessions/{id}/ws               render and notification stream

Every JSON response uses the models.APIResponse envelope. Session mutations
answer with the render props as they are right after the event; fetches the
event started complete later and arrive over the WebSocket stream.

Prometheus metrics are served at /metrics outside the versioned prefix.
*/
package api
