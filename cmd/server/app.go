// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/tomtom215/deliveryheat/internal/aggregate"
	"github.com/tomtom215/deliveryheat/internal/api"
	"github.com/tomtom215/deliveryheat/internal/backend"
	"github.com/tomtom215/deliveryheat/internal/catalog"
	"github.com/tomtom215/deliveryheat/internal/config"
	"github.com/tomtom215/deliveryheat/internal/geo"
	"github.com/tomtom215/deliveryheat/internal/heatmap"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/notify"
	"github.com/tomtom215/deliveryheat/internal/prefs"
	"github.com/tomtom215/deliveryheat/internal/supervisor"
	"github.com/tomtom215/deliveryheat/internal/supervisor/services"
	ws "github.com/tomtom215/deliveryheat/internal/websocket"
)

const (
	// notificationBuffer is the per-subscriber buffer of the notification bus.
	notificationBuffer = 64

	sessionSweepInterval = time.Minute
	warmupTimeout        = 10 * time.Second
)

// app holds the long-lived components of the server.
type app struct {
	cfg      *config.Config
	prefs    *prefs.BadgerStore
	backend  *backend.CircuitBreakerClient
	catalog  *catalog.Catalog
	bus      *notify.Bus
	hub      *ws.Hub
	registry *heatmap.Registry
	server   *http.Server
	tree     *supervisor.SupervisorTree
}

// newApp builds every component and the supervisor tree. Nothing runs until
// the tree is served.
func newApp(cfg *config.Config) (*app, error) {
	store, err := prefs.NewBadgerStore(cfg.Prefs.Path, cfg.Prefs.InMemory)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("path", cfg.Prefs.Path).
		Bool("in_memory", cfg.Prefs.InMemory).
		Msg("Panel preferences store opened")

	client := backend.NewCircuitBreakerClient(backend.NewHTTPClient(&cfg.Backend), &cfg.Backend)
	bus := notify.NewBus(notificationBuffer)
	hub := ws.NewHub()

	cat := catalog.New(client, bus, catalog.Config{
		CapitalRegion: cfg.HeatMap.CapitalRegion,
		Locale:        cfg.HeatMap.Locale,
		TTL:           cfg.HeatMap.TerminalCacheTTL,
	})

	registry := heatmap.NewRegistry(heatmap.Deps{
		Terminals: cat,
		Orders:    aggregate.New(client, cfg.HeatMap.LookbackDays),
		Stats:     client,
		Renderer:  hub,
		Notifier:  bus,
		Prefs:     store,
		Filter:    geo.NewRadiusFilter(cfg.HeatMap.GridThreshold, cfg.HeatMap.GridCellKm),
		Reducer: heatmap.Reducer{
			LookbackDays:    cfg.HeatMap.LookbackDays,
			DefaultRadiusKm: cfg.HeatMap.DefaultRadiusKm,
		},
		CapitalRegion:  cfg.HeatMap.CapitalRegion,
		Locale:         language.Make(cfg.HeatMap.Locale),
		SearchDebounce: cfg.HeatMap.SearchDebounce,
	}, cfg.HeatMap.MaxSessions, cfg.HeatMap.SessionTTL)

	handler := api.NewHandler(cat, registry, hub, client, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg))
	tree.AddDataService(services.NewNotificationBridgeService(notify.NewBridge(bus, hub)))
	tree.AddDataService(services.NewSessionJanitorService(registry, sessionSweepInterval))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	return &app{
		cfg:      cfg,
		prefs:    store,
		backend:  client,
		catalog:  cat,
		bus:      bus,
		hub:      hub,
		registry: registry,
		server:   server,
		tree:     tree,
	}, nil
}

// warmup loads the terminal catalog once so the first session does not pay
// for it. A failure is logged; the catalog retries on demand.
func (a *app) warmup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	terminals := a.catalog.Terminals(ctx)
	logging.Info().
		Int("terminals", len(terminals)).
		Str("backend_circuit", a.backend.State()).
		Msg("Terminal catalog warmed up")
}

// close releases what the supervisor tree does not own. It runs after the
// tree has stopped.
func (a *app) close() error {
	a.registry.CloseAll()
	if err := a.bus.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing notification bus")
	}
	if err := a.prefs.Close(); err != nil {
		return fmt.Errorf("close preferences store: %w", err)
	}
	return nil
}
