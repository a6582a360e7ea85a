// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/deliveryheat/internal/logging"
)

// Terminals returns the renderable terminals sorted by name.
func (h *Handler) Terminals(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.catalog.Terminals(r.Context()), start)
}

// AllTerminals returns every terminal the backend knows, renderable or not.
func (h *Handler) AllTerminals(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.catalog.All(r.Context()), start)
}

// RefreshTerminals drops the cached catalog, reloads it and pushes the new
// terminal list to every open session.
func (h *Handler) RefreshTerminals(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.catalog.Invalidate()
	terminals := h.catalog.Terminals(r.Context())
	h.sessions.ReloadTerminals(r.Context())

	logging.Ctx(r.Context()).Info().Int("terminals", len(terminals)).Msg("terminal catalog refreshed")
	respondSuccess(w, http.StatusOK, terminals, start)
}
