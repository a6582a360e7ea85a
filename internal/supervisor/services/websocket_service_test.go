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

	"github.com/tomtom215/deliveryheat/internal/websocket"
)

var (
	_ suture.Service = (*WebSocketHubService)(nil)
	_ ContextHub     = (*websocket.Hub)(nil)
)

type fakeHub struct {
	err  error
	runs atomic.Int32
}

func (h *fakeHub) RunWithContext(ctx context.Context) error {
	h.runs.Add(1)
	if h.err != nil {
		return h.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("stops with context", func(t *testing.T) {
		t.Parallel()
		hub := &fakeHub{}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		if err := NewWebSocketHubService(hub).Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want DeadlineExceeded", err)
		}
		if hub.runs.Load() != 1 {
			t.Errorf("runs = %d, want 1", hub.runs.Load())
		}
	})

	t.Run("propagates hub errors", func(t *testing.T) {
		t.Parallel()
		hubErr := errors.New("hub exploded")
		if err := NewWebSocketHubService(&fakeHub{err: hubErr}).Serve(context.Background()); !errors.Is(err, hubErr) {
			t.Errorf("Serve() = %v, want %v", err, hubErr)
		}
	})
}

func TestWebSocketHubService_RealHub(t *testing.T) {
	t.Parallel()

	hub := websocket.NewHub()
	svc := NewWebSocketHubService(hub)
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = svc.Serve(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("clients = %d, want 0", hub.GetClientCount())
	}
}
