// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/deliveryheat/internal/config"
	"github.com/tomtom215/deliveryheat/internal/heatmap"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/models"
	ws "github.com/tomtom215/deliveryheat/internal/websocket"
)

// TerminalCatalog is the terminal list the API serves.
type TerminalCatalog interface {
	Terminals(ctx context.Context) []models.Terminal
	All(ctx context.Context) []models.Terminal
	Invalidate()
}

// Sessions is the registry of open heat map views.
type Sessions interface {
	Open(ctx context.Context, init heatmap.Initial) (*heatmap.View, error)
	Get(id string) (*heatmap.View, error)
	Close(id string) error
	Len() int
	ReloadTerminals(ctx context.Context)
}

// BreakerState reports the backend circuit breaker state.
type BreakerState interface {
	State() string
}

// Handler contains dependencies for API handlers
type Handler struct {
	catalog   TerminalCatalog
	sessions  Sessions
	hub       *ws.Hub
	breaker   BreakerState
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler. hub and breaker may be nil.
func NewHandler(catalog TerminalCatalog, sessions Sessions, hub *ws.Hub, breaker BreakerState, cfg *config.Config) *Handler {
	return &Handler{
		catalog:   catalog,
		sessions:  sessions,
		hub:       hub,
		breaker:   breaker,
		config:    cfg,
		startTime: time.Now(),
	}
}

// view resolves the {id} URL parameter. On failure it writes the response.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) (*heatmap.View, bool) {
	v, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return nil, false
	}
	return v, true
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts only origins listed in security.cors_origins.
// Browsers always send Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
