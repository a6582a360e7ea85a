// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

/*
Package services adapts DeliveryHeat components to suture's Serve pattern.

Each wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - WebSocketHubService: delegates to websocket.Hub.RunWithContext.
  - NotificationBridgeService: forwards bus notifications to the hub.
  - SessionJanitorService: periodically closes idle heat map sessions.

The wrappers depend on small interfaces rather than the concrete types, so
they do not import the packages they supervise.
*/
package services
