// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/deliveryheat/internal/models"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status           string  `json:"status"`
	BackendCircuit   string  `json:"backend_circuit"`
	Sessions         int     `json:"sessions"`
	WebSocketClients int     `json:"websocket_clients"`
	Uptime           float64 `json:"uptime_seconds"`
}

func (h *Handler) healthStatus() HealthStatus {
	hs := HealthStatus{
		Status:         "healthy",
		BackendCircuit: "unknown",
		Sessions:       h.sessions.Len(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		hs.WebSocketClients = h.hub.GetClientCount()
	}
	if h.breaker != nil {
		hs.BackendCircuit = h.breaker.State()
		if hs.BackendCircuit == "open" {
			hs.Status = "degraded"
		}
	}
	return hs
}

// Health reports liveness, session count, websocket clients and the backend
// circuit state. A degraded backend still answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.healthStatus(), time.Now())
}

// HealthLive answers as long as the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{"alive": true}, time.Now())
}

// HealthReady answers 503 while the backend circuit is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	hs := h.healthStatus()
	if hs.Status != "healthy" {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "not_ready",
			Data:     hs,
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		})
		return
	}
	respondSuccess(w, http.StatusOK, hs, time.Now())
}
