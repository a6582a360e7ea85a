// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package catalog serves the cached list of delivery terminals.
//
// One backend fetch fills the cache for the configured TTL. Concurrent callers
// during a fetch share the same request. A failed fetch yields an empty list
// and an error notification addressed to the session found in each caller's
// context; it is neither cached nor retried.
package catalog

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tomtom215/deliveryheat/internal/cache"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/models"
	"github.com/tomtom215/deliveryheat/internal/notify"
)

// CacheKey is the single cache entry holding the terminal list.
const CacheKey = "terminals"

// FailureMessage is shown to the user when terminals cannot be loaded.
const FailureMessage = "Failed to load terminals"

// Source fetches the raw terminal list.
type Source interface {
	FetchTerminals(ctx context.Context) ([]models.Terminal, error)
}

// Config tunes a Catalog.
type Config struct {
	CapitalRegion string
	Locale        string
	TTL           time.Duration
}

// Catalog is the terminal catalog shared by every heat map session.
type Catalog struct {
	source   Source
	notifier notify.Notifier
	cache    *cache.Cache[[]models.Terminal]
	group    singleflight.Group
	capital  string
	lang     language.Tag
}

// New creates a Catalog. An unparsable locale falls back to language.Und.
func New(source Source, notifier notify.Notifier, cfg Config) *Catalog {
	if notifier == nil {
		notifier = notify.Discard
	}
	capital := cfg.CapitalRegion
	if capital == "" {
		capital = models.DefaultCapitalRegion
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.Und
	}
	return &Catalog{
		source:   source,
		notifier: notifier,
		cache:    cache.New[[]models.Terminal](cfg.TTL),
		capital:  capital,
		lang:     tag,
	}
}

// Terminals returns the render-eligible terminals sorted by name.
// It never fails: on error the result is empty.
func (c *Catalog) Terminals(ctx context.Context) []models.Terminal {
	all, ok := c.load(ctx)
	if !ok {
		return []models.Terminal{}
	}

	out := make([]models.Terminal, 0, len(all))
	for i := range all {
		if all[i].IsRenderable(c.capital) {
			out = append(out, all[i])
		}
	}
	metrics.CatalogTerminals.Set(float64(len(out)))
	return out
}

// All returns every validated terminal, sorted by name, including ones that
// are not drawn on the map. Selection lists use it.
func (c *Catalog) All(ctx context.Context) []models.Terminal {
	all, ok := c.load(ctx)
	if !ok {
		return []models.Terminal{}
	}
	out := make([]models.Terminal, len(all))
	copy(out, all)
	return out
}

// Invalidate drops the cached list so the next call fetches again.
func (c *Catalog) Invalidate() {
	c.cache.Delete(CacheKey)
	logging.Info().Msg("terminal catalog invalidated")
}

// CapitalRegion returns the region tag terminals must carry to be drawn.
func (c *Catalog) CapitalRegion() string { return c.capital }

// Locale returns the collation language.
func (c *Catalog) Locale() language.Tag { return c.lang }

// load returns the sorted list from cache or backend.
func (c *Catalog) load(ctx context.Context) ([]models.Terminal, bool) {
	if cached, ok := c.cache.Get(CacheKey); ok {
		metrics.CatalogFetches.WithLabelValues("hit").Inc()
		return cached, true
	}

	// The shared fetch must not be cancelled by whichever caller started it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(CacheKey, func() (interface{}, error) {
		terminals, err := c.source.FetchTerminals(fetchCtx)
		if err != nil {
			return nil, err
		}
		sorted := SortByName(terminals, c.lang)
		c.cache.Set(CacheKey, sorted)
		return sorted, nil
	})

	select {
	case <-ctx.Done():
		return nil, false
	case res := <-ch:
		if res.Err != nil {
			metrics.CatalogFetches.WithLabelValues("failed").Inc()
			logging.Ctx(ctx).Error().Err(res.Err).Bool("shared", res.Shared).Msg("failed to load terminals")
			// Every waiter tells its own session. A caller without a session
			// (REST, warmup) produces a notification for all clients.
			c.notifier.Notify(fetchCtx, notify.Error(logging.SessionIDFromContext(ctx), FailureMessage))
			return nil, false
		}
		metrics.CatalogFetches.WithLabelValues("fetched").Inc()
		terminals, _ := res.Val.([]models.Terminal)
		return terminals, true
	}
}

// SortByName returns a copy of terminals ordered by locale-aware name
// collation, then by id.
func SortByName(terminals []models.Terminal, tag language.Tag) []models.Terminal {
	out := make([]models.Terminal, len(terminals))
	copy(out, terminals)

	col := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := col.CompareString(out[i].Name, out[j].Name); cmp != 0 {
			return cmp < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}
