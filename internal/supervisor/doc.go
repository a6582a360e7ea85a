// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

/*
Package supervisor runs the long-lived DeliveryHeat services under a suture v4
supervisor tree.

The tree has three layers so that a crash in one layer restarts only that
layer:

	RootSupervisor ("deliveryheat")
	├── DataSupervisor ("data-layer")
	│   ├── NotificationBridgeService
	│   └── SessionJanitorService
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (restarts, backoff, stop timeouts) are logged through
sutureslog, which needs a *slog.Logger. Pass logging.NewSlogLogger() so they
end up in the same zerolog stream as everything else.

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
