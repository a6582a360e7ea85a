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

	"github.com/tomtom215/deliveryheat/internal/heatmap"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/models"
)

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	ID    string              `json:"id"`
	Props heatmap.RenderProps `json:"props"`
}

// OpenSession creates a heat map session. The body is optional and may carry
// a deep-link selection and date range.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.OpenSessionRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	rng, err := req.Range()
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidDateRange, err.Error(), nil)
		return
	}

	// The view outlives the request, so it must not inherit its cancellation.
	v, err := h.sessions.Open(context.WithoutCancel(r.Context()), heatmap.Initial{TerminalIDs: req.TerminalIDs, DateRange: rng})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("session_id", v.ID()).Int("terminals", len(req.TerminalIDs)).Msg("heat map session opened")
	respondSuccess(w, http.StatusCreated, SessionResponse{ID: v.ID(), Props: v.Props()}, start)
}

// SessionProps returns the current render props.
func (h *Handler) SessionProps(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, v.Props(), start)
}

// CloseSession closes the view and its WebSocket clients stop receiving renders.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutate runs op against the session view and answers with the props.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, v *heatmap.View) error) {
	start := time.Now()
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	ctx := logging.ContextWithSessionID(r.Context(), v.ID())
	if err := op(ctx, v); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, v.Props(), start)
}

// SelectTerminals replaces the terminal selection.
func (h *Handler) SelectTerminals(w http.ResponseWriter, r *http.Request) {
	var req models.TerminalSelectRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.SelectTerminals(ctx, req.IDs)
	})
}

// ToggleTerminal adds or removes one terminal.
func (h *Handler) ToggleTerminal(w http.ResponseWriter, r *http.Request) {
	tid := chi.URLParam(r, "tid")
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.ToggleTerminal(ctx, tid)
	})
}

// SetDateRange replaces the date range. Empty bounds select the default range.
func (h *Handler) SetDateRange(w http.ResponseWriter, r *http.Request) {
	var req models.DateRangeRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	rng, err := req.Range()
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidDateRange, err.Error(), nil)
		return
	}
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.SetDateRange(ctx, rng)
	})
}

// SetRadiusPoint enters radius mode around a point.
func (h *Handler) SetRadiusPoint(w http.ResponseWriter, r *http.Request) {
	var req models.RadiusPointRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.SetDeliveryRadiusPoint(ctx, req.Lat, req.Lon)
	})
}

// SetRadiusKm changes the radius; the view clamps it to the allowed range.
func (h *Handler) SetRadiusKm(w http.ResponseWriter, r *http.Request) {
	var req models.RadiusKmRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.SetDeliveryRadiusKm(ctx, req.Km)
	})
}

// CloseRadius leaves radius mode.
func (h *Handler) CloseRadius(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.CloseRadiusPanel(ctx)
	})
}

// ClearFilters resets selection, range, radius and cluster visibility.
func (h *Handler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.ClearAllFilters(ctx)
	})
}

// ToggleClusters flips order marker visibility.
func (h *Handler) ToggleClusters(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.ToggleOrderClusters(ctx)
	})
}

// SetPanels sets the panel flags present in the body.
func (h *Handler) SetPanels(w http.ResponseWriter, r *http.Request) {
	var req models.PanelsRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	h.mutate(w, r, func(ctx context.Context, v *heatmap.View) error {
		return v.SetPanels(ctx, req.FiltersVisible, req.StatsVisible)
	})
}

// Search schedules a debounced terminal search. The results arrive with the
// next render, so the response is 202 with the query echoed back.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.SearchRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	if err := v.Search(r.Context(), req.Query); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusAccepted, map[string]string{"query": req.Query}, start)
}
