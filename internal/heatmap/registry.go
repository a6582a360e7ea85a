// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/deliveryheat/internal/cache"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
)

// Registry owns the open views. It holds at most maxSessions views and
// closes views idle for longer than the TTL.
type Registry struct {
	deps  Deps
	views *cache.LRU[*View]
}

// NewRegistry creates a registry building views from deps.
func NewRegistry(deps Deps, maxSessions int, idleTTL time.Duration) *Registry {
	r := &Registry{deps: deps}
	r.views = cache.NewLRU[*View](maxSessions, idleTTL, r.onEvict)
	return r
}

func (r *Registry) onEvict(id string, v *View, reason cache.EvictReason) {
	v.Close()
	metrics.HeatMapSessions.Set(float64(r.views.Len()))
	logging.Info().Str("session_id", id).Str("reason", string(reason)).Msg("heat map session closed")
}

// Open creates, registers and mounts a new view.
func (r *Registry) Open(ctx context.Context, init Initial) (*View, error) {
	id := uuid.NewString()
	v := NewView(id, r.deps)
	r.views.Add(id, v)
	metrics.HeatMapSessions.Set(float64(r.views.Len()))

	if err := v.Mount(logging.ContextWithSessionID(ctx, id), init); err != nil {
		r.views.Remove(id)
		return nil, fmt.Errorf("open heat map session: %w", err)
	}
	return v, nil
}

// Get returns the view for id and refreshes its idle timer.
func (r *Registry) Get(id string) (*View, error) {
	v, ok := r.views.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return v, nil
}

// Close closes and forgets the view for id.
func (r *Registry) Close(id string) error {
	if !r.views.Remove(id) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Len returns the number of open views.
func (r *Registry) Len() int {
	return r.views.Len()
}

// IDs returns the open session ids, most recently used first.
func (r *Registry) IDs() []string {
	return r.views.Keys()
}

// ReloadTerminals refreshes the terminal list of every open view.
func (r *Registry) ReloadTerminals(ctx context.Context) {
	for _, id := range r.views.Keys() {
		if v, ok := r.views.Peek(id); ok {
			v.ReloadTerminals(ctx)
		}
	}
}

// CleanupExpired closes idle views and returns how many were closed.
func (r *Registry) CleanupExpired() int {
	return r.views.CleanupExpired()
}

// CloseAll closes every view.
func (r *Registry) CloseAll() {
	r.views.Purge()
	metrics.HeatMapSessions.Set(0)
}
