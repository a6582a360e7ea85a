// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

/*
Package main is the entry point for the DeliveryHeat server.

DeliveryHeat serves interactive order heat maps for a fleet of pickup
terminals. Each browser tab opens a heat map session, picks terminals and a
date range, and can drop a point on the map to see how many orders fall
inside a delivery radius around it. Renders and notifications are streamed
over a per-session WebSocket.

# Application Architecture

	RootSupervisor ("deliveryheat")
	├── DataSupervisor ("data-layer")
	│   ├── Notification bridge (bus to WebSocket hub)
	│   └── Session janitor (closes idle sessions)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket hub
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, .env, environment)
 2. Logging: zerolog
 3. Panel preferences: BadgerDB (or in memory)
 4. Backend client: HTTP client with rate limiter and circuit breaker
 5. Terminal catalog and order aggregator
 6. Notification bus (Watermill GoChannel) and WebSocket hub
 7. Session registry, HTTP router and supervisor tree

# Configuration

Every setting has an environment variable, for example:

	BACKEND_URL=http://orders.internal/api
	BACKEND_API_TOKEN=secret
	HEATMAP_CAPITAL_REGION=capital
	PREFS_PATH=/data/prefs
	HTTP_PORT=3860
	CORS_ORIGINS=https://map.example.com

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
SHUTDOWN_TIMEOUT, open sessions are closed, and the preferences store
is closed last.
*/
package main
