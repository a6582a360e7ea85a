// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/deliveryheat/internal/heatmap"
)

var (
	_ suture.Service = (*SessionJanitorService)(nil)
	_ Sweeper        = (*heatmap.Registry)(nil)
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) CleanupExpired() int {
	return int(s.calls.Add(1))
}

func TestNewSessionJanitorService_DefaultInterval(t *testing.T) {
	t.Parallel()

	svc := NewSessionJanitorService(&countingSweeper{}, 0)
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
	if svc.String() != "session-janitor" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestSessionJanitorService_SweepsUntilCanceled(t *testing.T) {
	t.Parallel()

	sweeper := &countingSweeper{}
	svc := NewSessionJanitorService(sweeper, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("sweeps = %d, want at least 2", sweeper.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
