// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/deliveryheat/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw selects the default middleware config.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Route("/terminals", func(r chi.Router) {
			r.Use(chimiddleware.Compress(5, "application/json"))
			r.Get("/", router.handler.Terminals)
			r.Get("/all", router.handler.AllTerminals)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitRefresh)).Post("/refresh", router.handler.RefreshTerminals)
		})

		r.Post("/sessions", router.handler.OpenSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).Get("/ws", router.handler.SessionWebSocket)

			r.Group(func(r chi.Router) {
				r.Use(chimiddleware.Compress(5, "application/json"))
				r.Get("/", router.handler.SessionProps)
				r.Delete("/", router.handler.CloseSession)
				r.Put("/terminals", router.handler.SelectTerminals)
				r.Post("/terminals/{tid}/toggle", router.handler.ToggleTerminal)
				r.Put("/date-range", router.handler.SetDateRange)
				r.Put("/radius", router.handler.SetRadiusPoint)
				r.Put("/radius/km", router.handler.SetRadiusKm)
				r.Delete("/radius", router.handler.CloseRadius)
				r.Post("/clear", router.handler.ClearFilters)
				r.Post("/clusters/toggle", router.handler.ToggleClusters)
				r.Put("/panels", router.handler.SetPanels)
				r.Put("/search", router.handler.Search)
			})
		})
	})

	return r
}
