// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package heatmap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/tomtom215/deliveryheat/internal/backend"
	"github.com/tomtom215/deliveryheat/internal/geo"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/models"
	"github.com/tomtom215/deliveryheat/internal/notify"
	"github.com/tomtom215/deliveryheat/internal/prefs"
)

// TerminalSource is the terminal catalog. It never fails.
type TerminalSource interface {
	Terminals(ctx context.Context) []models.Terminal
}

// OrderSource fetches aggregated order points.
type OrderSource interface {
	Fetch(ctx context.Context, terminalIDs []string, r models.DateRange) ([]models.OrderLocationPoint, error)
}

// StatsSource fetches per-terminal delivery statistics.
type StatsSource interface {
	FetchTerminalStats(ctx context.Context, q backend.OrderQuery) ([]models.TerminalDeliveryStat, error)
}

// Deps are the collaborators shared by every view.
type Deps struct {
	Terminals TerminalSource
	Orders    OrderSource
	Stats     StatsSource
	Renderer  MapRenderer
	Notifier  notify.Notifier
	Prefs     prefs.Store
	Filter    *geo.RadiusFilter
	Reducer   Reducer

	CapitalRegion  string
	Locale         language.Tag
	SearchDebounce time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) withDefaults() {
	if d.Renderer == nil {
		d.Renderer = NopRenderer
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard
	}
	if d.Prefs == nil {
		d.Prefs = prefs.NewMemoryStore()
	}
	if d.Filter == nil {
		d.Filter = geo.NewRadiusFilter(0, geo.DefaultCellSizeKm)
	}
	if d.CapitalRegion == "" {
		d.CapitalRegion = models.DefaultCapitalRegion
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Initial seeds a new view, for example from a deep link.
type Initial struct {
	TerminalIDs []string
	DateRange   models.DateRange
}

// View is one heat map session.
type View struct {
	id   string
	deps Deps

	// ctx bounds every fetch of the view; cancel is called by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	closed bool

	terminals []models.Terminal
	orders    []models.OrderLocationPoint
	stats     []models.TerminalDeliveryStat

	terminalsVersion uint64
	ordersVersion    uint64

	// Latest issued fetch per resource. A result is applied only if its
	// sequence number still matches.
	ordersSeq     uint64
	statsSeq      uint64
	ordersLoading bool
	statsLoading  bool

	memo        memo
	searchTimer *time.Timer

	renderMu sync.Mutex
	inflight sync.WaitGroup
}

// NewView creates an unmounted view.
func NewView(id string, deps Deps) *View {
	deps.withDefaults()
	ctx, cancel := context.WithCancel(logging.ContextWithSessionID(context.Background(), id))
	return &View{
		id:     id,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		state:  deps.Reducer.NewState(deps.Now()),
	}
}

// ID returns the session id.
func (v *View) ID() string { return v.id }

// Mount loads panel flags and terminals, starts the initial fetches and
// renders once.
func (v *View) Mount(ctx context.Context, init Initial) error {
	var (
		panels    prefs.Panels
		terminals []models.Terminal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		panels = prefs.LoadPanels(gctx, v.deps.Prefs)
		return nil
	})
	g.Go(func() error {
		terminals = v.deps.Terminals.Terminals(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("mount view: %w", err)
	}

	now := v.deps.Now()
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	v.state.FiltersVisible = panels.FiltersVisible
	v.state.StatsVisible = panels.StatsVisible
	v.state.SelectedTerminalIDs = normalizeIDs(init.TerminalIDs)
	if rng, err := v.deps.Reducer.dateRange(init.DateRange, now); err == nil {
		v.state.DateRange = rng
	}
	v.terminals = terminals
	v.terminalsVersion++

	v.startOrdersLocked()
	if len(v.state.SelectedTerminalIDs) > 0 {
		v.startStatsLocked()
	}
	v.mu.Unlock()

	logging.Ctx(v.ctx).Info().Int("terminals", len(terminals)).Msg("heat map view mounted")
	v.render()
	return nil
}

// ReloadTerminals refreshes the terminal list from the catalog and re-renders.
func (v *View) ReloadTerminals(ctx context.Context) {
	terminals := v.deps.Terminals.Terminals(logging.ContextWithSessionID(ctx, v.id))
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.terminals = terminals
	v.terminalsVersion++
	v.mu.Unlock()
	v.render()
}

// Dispatch applies ev. It returns the rejection error when the event was
// refused; the state is then unchanged.
func (v *View) Dispatch(ctx context.Context, ev Event) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}

	next, eff := v.deps.Reducer.Reduce(v.state, ev, v.deps.Now())
	v.state = next

	if eff.PersistPanels {
		panels := prefs.Panels{FiltersVisible: next.FiltersVisible, StatsVisible: next.StatsVisible}
		if err := prefs.SavePanels(ctx, v.deps.Prefs, panels); err != nil {
			logging.Ctx(v.ctx).Warn().Err(err).Msg("failed to persist panel flags")
		}
	}
	if eff.RefetchOrders {
		v.startOrdersLocked()
	}
	if eff.RefetchStats {
		v.startStatsLocked()
	}
	if eff.ClearStats {
		// Invalidate any stats fetch still in flight.
		v.statsSeq++
		v.statsLoading = false
		v.stats = nil
	}
	v.mu.Unlock()

	metrics.RecordHeatMapEvent(ev.Name(), eff.Rejected == nil)
	if eff.Rejected != nil {
		logging.Ctx(v.ctx).Warn().Err(eff.Rejected).Str("event", ev.Name()).Msg("heat map event rejected")
	}
	if eff.Notice != nil {
		n := *eff.Notice
		n.SessionID = v.id
		v.deps.Notifier.Notify(ctx, n)
	}

	if eff.Rejected == nil {
		v.render()
	}
	return eff.Rejected
}

// startOrdersLocked issues a new order fetch for the current state.
func (v *View) startOrdersLocked() {
	v.ordersSeq++
	seq := v.ordersSeq
	v.ordersLoading = true
	ids := append([]string(nil), v.state.SelectedTerminalIDs...)
	rng := v.state.DateRange

	v.inflight.Add(1)
	go func() {
		defer v.inflight.Done()
		points, err := guard(func() ([]models.OrderLocationPoint, error) {
			return v.deps.Orders.Fetch(v.ctx, ids, rng)
		})
		v.applyOrders(seq, points, err)
	}()
}

// startStatsLocked issues a new statistics fetch for the current state.
func (v *View) startStatsLocked() {
	v.statsSeq++
	seq := v.statsSeq
	v.statsLoading = true
	q := backend.OrderQuery{
		TerminalIDs: append([]string(nil), v.state.SelectedTerminalIDs...),
		Range:       v.state.DateRange,
	}

	v.inflight.Add(1)
	go func() {
		defer v.inflight.Done()
		stats, err := guard(func() ([]models.TerminalDeliveryStat, error) {
			return v.deps.Stats.FetchTerminalStats(v.ctx, q)
		})
		v.applyStats(seq, stats, err)
	}()
}

func (v *View) applyOrders(seq uint64, points []models.OrderLocationPoint, err error) {
	v.mu.Lock()
	if v.closed || seq != v.ordersSeq {
		v.mu.Unlock()
		metrics.HeatMapStaleResponses.WithLabelValues("orders").Inc()
		return
	}
	v.ordersLoading = false
	if err != nil {
		v.orders = nil
	} else {
		v.orders = points
	}
	v.ordersVersion++
	v.mu.Unlock()

	if err != nil {
		v.fetchFailed("orders", MsgOrdersFailed, err)
	}
	v.render()
}

func (v *View) applyStats(seq uint64, stats []models.TerminalDeliveryStat, err error) {
	v.mu.Lock()
	if v.closed || seq != v.statsSeq {
		v.mu.Unlock()
		metrics.HeatMapStaleResponses.WithLabelValues("stats").Inc()
		return
	}
	v.statsLoading = false
	if err != nil {
		v.stats = nil
	} else {
		v.stats = stats
	}
	v.mu.Unlock()

	if err != nil {
		v.fetchFailed("stats", MsgStatsFailed, err)
	}
	v.render()
}

func (v *View) fetchFailed(resource, msg string, err error) {
	metrics.HeatMapFetchFailures.WithLabelValues(resource).Inc()
	logging.Ctx(v.ctx).Error().Err(err).Str("resource", resource).Msg("heat map fetch failed")
	v.deps.Notifier.Notify(v.ctx, notify.Error(v.id, msg))
}

// guard runs fn and converts a panic into an error.
func guard[T any](fn func() ([]T, error)) (out []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fn()
}

// Props returns the current render props.
func (v *View) Props() RenderProps {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.propsLocked()
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

func (v *View) propsLocked() RenderProps {
	s := &v.state
	m := &v.memo

	if m.heat == nil || m.heatVersion != v.ordersVersion {
		m.heat = HeatMapData(v.orders)
		m.heatVersion = v.ordersVersion
	}
	if m.markers == nil || m.markersVersion != v.terminalsVersion {
		m.markers = TerminalMarkers(v.terminals, v.deps.CapitalRegion)
		m.markersVersion = v.terminalsVersion
	}
	if fk := newFilterKey(s, v.ordersVersion); m.filtered.Points == nil || m.filterKey != fk {
		m.filtered = FilteredOrderMarkers(s, v.orders, v.deps.Filter)
		if m.filtered.Points == nil {
			m.filtered.Points = []models.OrderLocationPoint{}
		}
		m.filterKey = fk
		if m.filtered.Skipped > 0 {
			metrics.HeatMapRadiusSkipped.Add(float64(m.filtered.Skipped))
		}
	}
	if sk := (searchKey{terminalsVersion: v.terminalsVersion, query: s.SearchQuery}); m.search == nil || m.searchKey != sk {
		m.search = SearchTerminals(m.markers, s.SearchQuery, v.deps.Locale)
		m.searchKey = sk
	}

	stats := v.stats
	if stats == nil {
		stats = []models.TerminalDeliveryStat{}
	}

	props := RenderProps{
		SessionID:           v.id,
		Mode:                s.Mode(),
		HeatMapData:         m.heat,
		TerminalMarkers:     m.markers,
		OrderMarkers:        m.filtered.Points,
		ShowOrderClusters:   s.ShowOrderClusters,
		SelectedTerminalIDs: append([]string{}, s.SelectedTerminalIDs...),
		DateRange:           DateRangeProps{From: s.DateRange.FromParam(), To: s.DateRange.ToParam()},
		DeliveryRadiusKm:    s.RadiusKm,
		ShowDeliveryRadius:  s.ShowDeliveryRadius,
		AggregatedStats:     AggregateStats(v.stats),
		TerminalStats:       stats,
		FiltersVisible:      s.FiltersVisible,
		StatsVisible:        s.StatsVisible,
		SearchQuery:         s.SearchQuery,
		SearchResults:       m.search,
		Loading:             Loading{Orders: v.ordersLoading, Stats: v.statsLoading},
	}
	if s.RadiusPoint != nil {
		p := *s.RadiusPoint
		props.DeliveryRadiusPoint = &p
		props.OrdersInRadius = m.filtered.OrdersInRadius
	}
	return props
}

// render pushes the latest props. Renders are serialized so the renderer
// never receives an older snapshot after a newer one.
func (v *View) render() {
	v.renderMu.Lock()
	defer v.renderMu.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	props := v.propsLocked()
	v.mu.Unlock()

	if err := v.deps.Renderer.Render(v.ctx, v.id, props); err != nil {
		logging.Ctx(v.ctx).Debug().Err(err).Msg("render failed")
	}
}

// Wait blocks until in-flight fetches and pending searches have finished.
func (v *View) Wait() {
	v.inflight.Wait()
}

// Close cancels in-flight fetches and waits for them. It is idempotent.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.searchTimer != nil && v.searchTimer.Stop() {
		v.inflight.Done()
	}
	v.mu.Unlock()

	v.cancel()
	v.inflight.Wait()
	logging.Ctx(v.ctx).Info().Msg("heat map view closed")
}
