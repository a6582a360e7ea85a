// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/deliveryheat/internal/heatmap"
	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
	"github.com/tomtom215/deliveryheat/internal/notify"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeRender              = "render"
	MessageTypeNotification        = "notification"
	MessageTypeError               = "error"
	MessageTypePing                = "ping"
	MessageTypePong                = "pong"
	MessageTypeTerminalSelect      = "terminal_select"
	MessageTypeCheckDeliveryRadius = "check_delivery_radius"
)

// ErrQueueFull is returned when the outbound queue cannot take a message.
var ErrQueueFull = errors.New("websocket outbound queue full")

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope is a message addressed to one client, one session, or everyone
// when both are empty.
type envelope struct {
	client    *Client
	sessionID string
	message   Message
}

// Hub maintains the active clients and routes messages to the clients of a
// session.
//
// Renders bypass the outbound queue: each session keeps only its newest
// props until the run loop flushes them, so a burst never loses the last one.
type Hub struct {
	clients    map[*Client]bool
	sessions   map[string]map[*Client]bool
	outbound   chan envelope
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	renderMu       sync.Mutex
	pendingRenders map[string]heatmap.RenderProps
	renderReady    chan struct{}
}

var (
	_ heatmap.MapRenderer = (*Hub)(nil)
	_ notify.Sink         = (*Hub)(nil)
)

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		outbound:   make(chan envelope, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]map[*Client]bool),

		pendingRenders: make(map[string]heatmap.RenderProps),
		renderReady:    make(chan struct{}, 1),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every client
// and returns ctx.Err(). It is meant to run under a supervisor.
//
// Lifecycle events are handled before queued messages so a client registered
// before a send always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case env := <-h.outbound:
			h.deliver(env)
		case <-h.renderReady:
			h.flushRenders()
		}
	}
}

// flushRenders delivers the newest pending props of every session.
func (h *Hub) flushRenders() {
	h.renderMu.Lock()
	pending := h.pendingRenders
	h.pendingRenders = make(map[string]heatmap.RenderProps, len(pending))
	h.renderMu.Unlock()

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		h.deliver(envelope{sessionID: id, message: Message{Type: MessageTypeRender, Data: pending[id]}})
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	set := h.sessions[client.sessionID]
	if set == nil {
		set = make(map[*Client]bool)
		h.sessions[client.sessionID] = set
	}
	set[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Str("session_id", client.sessionID).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	removed := h.dropLocked(client)
	total := len(h.clients)
	h.mu.Unlock()

	if removed {
		metrics.WSConnections.Set(float64(total))
		logging.Info().Str("session_id", client.sessionID).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// dropLocked forgets client and closes its send channel. Must be called with mu held.
func (h *Hub) dropLocked(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	if set := h.sessions[client.sessionID]; set != nil {
		delete(set, client)
		if len(set) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
	close(client.send)
	return true
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	// Cancellation is expected here, so it is not logged as an error.
	logger := logging.WithComponent("websocket-hub")
	logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// deliver sends env to its targets in client id order. Clients whose buffer
// is full are dropped.
func (h *Hub) deliver(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets map[*Client]bool
	switch {
	case env.client != nil:
		if h.clients[env.client] {
			targets = map[*Client]bool{env.client: true}
		}
	case env.sessionID == "":
		targets = h.clients
	default:
		targets = h.sessions[env.sessionID]
	}
	clients := sortedClients(targets)

	for _, client := range clients {
		select {
		case client.send <- env.message:
			metrics.WSMessagesSent.Inc()
		default:
			metrics.WSMessagesDropped.Inc()
			logging.Warn().Str("session_id", client.sessionID).Uint64("client_id", client.id).Msg("websocket client too slow, disconnecting")
			h.dropLocked(client)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range sortedClients(h.clients) {
		h.dropLocked(client)
	}
	metrics.WSConnections.Set(0)
}

func sortedClients(set map[*Client]bool) []*Client {
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// SendToSession queues msg for every client of sessionID. It never blocks.
func (h *Hub) SendToSession(sessionID string, msg Message) error {
	return h.enqueue(envelope{sessionID: sessionID, message: msg})
}

// sendToClient queues msg for a single client.
func (h *Hub) sendToClient(client *Client, msg Message) error {
	return h.enqueue(envelope{client: client, sessionID: client.sessionID, message: msg})
}

func (h *Hub) enqueue(env envelope) error {
	select {
	case h.outbound <- env:
		return nil
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("session_id", env.sessionID).Str("message_type", env.message.Type).Msg("outbound channel full, dropping message")
		return ErrQueueFull
	}
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg Message) error {
	return h.SendToSession("", msg)
}

// Render pushes props to the clients of sessionID. It never blocks and never
// drops: props not yet flushed are replaced by newer ones for the same session.
//
//nolint:gocritic // RenderProps is passed by value per heatmap.MapRenderer
func (h *Hub) Render(_ context.Context, sessionID string, props heatmap.RenderProps) error {
	h.renderMu.Lock()
	replaced := false
	if _, ok := h.pendingRenders[sessionID]; ok {
		replaced = true
	}
	h.pendingRenders[sessionID] = props
	h.renderMu.Unlock()

	if replaced {
		metrics.WSRendersCoalesced.Inc()
	}
	select {
	case h.renderReady <- struct{}{}:
	default:
	}
	return nil
}

// DeliverNotification pushes n to the clients of its session, or to all
// clients when it carries no session.
func (h *Hub) DeliverNotification(n notify.Notification) {
	_ = h.SendToSession(n.SessionID, Message{Type: MessageTypeNotification, Data: n})
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionClientCount returns the number of clients watching sessionID.
func (h *Hub) SessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
