// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package api

import (
	"net/http"

	"github.com/tomtom215/deliveryheat/internal/logging"
	ws "github.com/tomtom215/deliveryheat/internal/websocket"
)

// SessionWebSocket upgrades to a WebSocket that streams the session's renders
// and notifications and accepts widget callbacks. The current props are sent
// right after the client registers.
func (h *Handler) SessionWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.hub, conn, v.ID(), v)
	h.hub.Register <- client
	client.Start()

	_ = h.hub.Render(r.Context(), v.ID(), v.Props())
}
