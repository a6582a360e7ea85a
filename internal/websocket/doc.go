// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

/*
Package websocket pushes heat map render props and notifications to browser
map widgets and carries the widget callbacks back into the session.

Key Components:

  - Hub: owns the connected clients, grouped by heat map session id
  - Client: one WebSocket connection with a read and a write goroutine
  - Message: the typed envelope for every frame

Outbound message types:

  - render: the full RenderProps of the session
  - notification: a transient notice for the session
  - error: a rejected inbound message
  - pong: reply to a client ping

Inbound message types:

  - terminal_select: {"ids": [...]} replaces the terminal selection
  - check_delivery_radius: {"lat": .., "lon": ..} places the radius center
  - ping

The Hub implements heatmap.MapRenderer and notify.Sink, so views render into it
and the notification bridge delivers into it directly:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	deps.Renderer = hub
	bridge := notify.NewBridge(bus, hub)

Sends never block the caller. When a client's buffer is full the client is
dropped and the browser reconnects.
*/
package websocket
