// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

// Package notify carries user-facing notifications (toasts) from the heat map
// core to connected dashboards.
//
// Producers call Notifier.Notify, which never blocks and never fails. The Bus
// implementation publishes onto an in-process Watermill channel; a Bridge
// consumes that channel and hands each notification to a Sink, normally the
// WebSocket hub.
package notify

import (
	"context"
	"time"
)

// Level is the severity shown to the user.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one message for the user.
// An empty SessionID addresses every connected session.
type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers notifications without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

// Notify calls f.
func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) {})

// Error builds an error notification.
func Error(sessionID, msg string) Notification {
	return Notification{SessionID: sessionID, Level: LevelError, Message: msg}
}

// Info builds an info notification.
func Info(sessionID, msg string) Notification {
	return Notification{SessionID: sessionID, Level: LevelInfo, Message: msg}
}
