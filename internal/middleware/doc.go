// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

/*
Package middleware provides the HTTP middleware that the chi router in
internal/api composes with chi's own middleware.

  - RequestID: accepts or generates X-Request-ID and stores it in the logging context
  - AccessLog: one structured zerolog line per request
  - PrometheusMetrics: request count, duration and in-flight gauge per route pattern

Order in the router:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

Metrics are labelled with the chi route pattern, not the raw path, so that
session ids never become label values.
*/
package middleware
