// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package services

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/notify"
)

// Runner is satisfied by *notify.Bridge.
type Runner interface {
	Run(ctx context.Context) error
}

// NotificationBridgeService forwards notifications from the bus to the
// WebSocket hub. Once the bus is closed there is nothing left to restart.
type NotificationBridgeService struct {
	bridge Runner
	name   string
}

// NewNotificationBridgeService wraps bridge.
func NewNotificationBridgeService(bridge Runner) *NotificationBridgeService {
	return &NotificationBridgeService{
		bridge: bridge,
		name:   "notification-bridge",
	}
}

// Serve runs the bridge until ctx is done.
func (n *NotificationBridgeService) Serve(ctx context.Context) error {
	err := n.bridge.Run(ctx)
	if errors.Is(err, notify.ErrBusClosed) {
		logging.Info().Msg("notification bus closed, bridge stopped")
		return suture.ErrDoNotRestart
	}
	return err
}

// String implements fmt.Stringer.
func (n *NotificationBridgeService) String() string {
	return n.name
}
