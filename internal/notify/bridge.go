// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package notify

import (
	"context"
	"fmt"

	"github.com/tomtom215/deliveryheat/internal/logging"
)

// Sink receives notifications consumed from the bus.
type Sink interface {
	DeliverNotification(n Notification)
}

// Bridge forwards bus notifications to a Sink.
type Bridge struct {
	bus  *Bus
	sink Sink
}

// NewBridge creates a bridge from bus to sink.
func NewBridge(bus *Bus, sink Sink) *Bridge {
	return &Bridge{bus: bus, sink: sink}
}

// Run forwards notifications until ctx is done or the bus is closed.
func (b *Bridge) Run(ctx context.Context) error {
	notifications, err := b.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("notification bridge: %w", err)
	}

	logging.Debug().Str("topic", Topic).Msg("notification bridge started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrBusClosed
			}
			b.sink.DeliverNotification(n)
		}
	}
}
