// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package prefs persists small user preferences, such as which heat map
// panels are open, as string values.
package prefs

import (
	"context"
	"errors"
	"sync"
)

// Panel flag keys. Values are the literal strings "true" and "false".
const (
	KeyFiltersVisible = "heatmap-filters-visible"
	KeyStatsVisible   = "heatmap-stats-visible"
)

// ErrEmptyKey is returned for an empty key.
var ErrEmptyKey = errors.New("preference key cannot be empty")

// Store is a string key/value preference store.
type Store interface {
	// Get returns the value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Panels holds the persisted panel visibility flags.
type Panels struct {
	FiltersVisible bool `json:"filters_visible"`
	StatsVisible   bool `json:"stats_visible"`
}

// DefaultPanels has both panels open.
func DefaultPanels() Panels {
	return Panels{FiltersVisible: true, StatsVisible: true}
}

// LoadPanels reads both flags. A missing, unreadable or invalid value
// yields the default of true.
func LoadPanels(ctx context.Context, s Store) Panels {
	return Panels{
		FiltersVisible: loadFlag(ctx, s, KeyFiltersVisible),
		StatsVisible:   loadFlag(ctx, s, KeyStatsVisible),
	}
}

func loadFlag(ctx context.Context, s Store, key string) bool {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return true
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	default:
		return true
	}
}

// SavePanels writes both flags.
func SavePanels(ctx context.Context, s Store, p Panels) error {
	if err := s.Set(ctx, KeyFiltersVisible, formatFlag(p.FiltersVisible)); err != nil {
		return err
	}
	return s.Set(ctx, KeyStatsVisible, formatFlag(p.StatsVisible))
}

func formatFlag(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
