// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/deliveryheat/internal/heatmap"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/models"
	"github.com/tomtom215/deliveryheat/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// clientIDCounter gives clients a stable delivery order.
var clientIDCounter atomic.Uint64

// Commands is the part of a heat map view a widget may drive.
type Commands interface {
	SelectTerminals(ctx context.Context, ids []string) error
	SetDeliveryRadiusPoint(ctx context.Context, lat, lon float64) error
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id        uint64
	sessionID string
	hub       *Hub
	conn      *websocket.Conn
	cmds      Commands
	ctx       context.Context
	send      chan Message
}

// NewClient creates a client for one session. cmds may be nil for a
// read-only stream.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, cmds Commands) *Client {
	return &Client{
		id:        clientIDCounter.Add(1),
		sessionID: sessionID,
		hub:       hub,
		conn:      conn,
		cmds:      cmds,
		ctx:       logging.ContextWithSessionID(context.Background(), sessionID),
		send:      make(chan Message, 256),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// SessionID returns the session the client watches.
func (c *Client) SessionID() string {
	return c.sessionID
}

// inbound is a frame received from the widget.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// handleInbound applies one frame and returns the reply to send, if any.
func (c *Client) handleInbound(raw []byte) *Message {
	metrics.WSMessagesReceived.Inc()

	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorMessage("INVALID_MESSAGE", "message is not valid JSON")
	}

	switch msg.Type {
	case MessageTypePing:
		return &Message{Type: MessageTypePong}

	case MessageTypeTerminalSelect:
		var req models.TerminalSelectRequest
		if reply := decodePayload(msg.Data, &req); reply != nil {
			return reply
		}
		return c.apply(msg.Type, func() error {
			return c.cmds.SelectTerminals(c.ctx, req.IDs)
		})

	case MessageTypeCheckDeliveryRadius:
		var req models.RadiusPointRequest
		if reply := decodePayload(msg.Data, &req); reply != nil {
			return reply
		}
		return c.apply(msg.Type, func() error {
			return c.cmds.SetDeliveryRadiusPoint(c.ctx, req.Lat, req.Lon)
		})

	default:
		return errorMessage("UNKNOWN_TYPE", fmt.Sprintf("unsupported message type %q", msg.Type))
	}
}

// decodePayload unmarshals and validates data into dst.
func decodePayload(data json.RawMessage, dst interface{}) *Message {
	if len(data) == 0 {
		return errorMessage("INVALID_MESSAGE", "message data is required")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errorMessage("INVALID_MESSAGE", "message data is malformed")
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return errorMessage("VALIDATION_ERROR", verr.Error())
	}
	return nil
}

func (c *Client) apply(msgType string, fn func() error) *Message {
	if c.cmds == nil {
		return errorMessage("READ_ONLY", "this stream does not accept commands")
	}
	err := fn()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, heatmap.ErrViewClosed):
		return errorMessage("SESSION_CLOSED", "session is closed")
	default:
		logging.Ctx(c.ctx).Debug().Err(err).Str("message_type", msgType).Msg("websocket command rejected")
		return errorMessage("REJECTED", err.Error())
	}
}

func errorMessage(code, msg string) *Message {
	return &Message{Type: MessageTypeError, Data: ErrorData{Code: code, Message: msg}}
}

// readPump pumps messages from the websocket connection into the session.
func (c *Client) readPump() {
	defer func() {
		// The hub may already be stopped during shutdown.
		select {
		case c.hub.Unregister <- c:
		case <-time.After(writeWait):
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		reply := c.handleInbound(raw)
		if reply == nil {
			continue
		}
		// The hub owns c.send, so replies go through it.
		_ = c.hub.sendToClient(c, *reply)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := MarshalMessage(message)
			if err != nil {
				logging.Error().Err(err).Str("message_type", message.Type).Msg("failed to encode websocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Debug().Err(err).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
