// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/deliveryheat/internal/config"
	"github.com/tomtom215/deliveryheat/internal/logging"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// The default logger is already usable here.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("backend_url", cfg.Backend.URL).
		Str("capital_region", cfg.HeatMap.CapitalRegion).
		Str("locale", cfg.HeatMap.Locale).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting DeliveryHeat")

	a, err := newApp(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.warmup(ctx)

	logging.Info().Msg("Starting supervisor tree")
	if err := a.tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := a.tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err := a.close(); err != nil {
		logging.Error().Err(err).Msg("Shutdown error")
		os.Exit(1)
	}
	logging.Info().Msg("DeliveryHeat stopped")
}
