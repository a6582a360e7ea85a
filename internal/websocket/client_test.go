// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/deliveryheat/internal/heatmap"
)

type fakeCommands struct {
	mu       sync.Mutex
	selected [][]string
	points   [][2]float64
	err      error
}

func (f *fakeCommands) SelectTerminals(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, ids)
	return f.err
}

func (f *fakeCommands) SetDeliveryRadiusPoint(_ context.Context, lat, lon float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, [2]float64{lat, lon})
	return f.err
}

func (f *fakeCommands) selections() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.selected...)
}

func errorCode(t *testing.T, msg *Message) string {
	t.Helper()
	if msg == nil {
		return ""
	}
	if msg.Type != MessageTypeError {
		return msg.Type
	}
	data, ok := msg.Data.(ErrorData)
	if !ok {
		t.Fatalf("error message carries %T", msg.Data)
	}
	return data.Code
}

func TestClient_HandleInbound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		err   error
		reply string
	}{
		{"ping", `{"type":"ping"}`, nil, MessageTypePong},
		{"not json", `{"type":`, nil, "INVALID_MESSAGE"},
		{"unknown type", `{"type":"zoom"}`, nil, "UNKNOWN_TYPE"},
		{"select", `{"type":"terminal_select","data":{"ids":["1","2"]}}`, nil, ""},
		{"select without data", `{"type":"terminal_select"}`, nil, "INVALID_MESSAGE"},
		{"select empty id", `{"type":"terminal_select","data":{"ids":["1",""]}}`, nil, "VALIDATION_ERROR"},
		{"select wrong shape", `{"type":"terminal_select","data":{"ids":"1"}}`, nil, "INVALID_MESSAGE"},
		{"radius", `{"type":"check_delivery_radius","data":{"lat":55.75,"lon":37.61}}`, nil, ""},
		{"radius wrapped longitude", `{"type":"check_delivery_radius","data":{"lat":41.3,"lon":429.2}}`, nil, ""},
		{"radius non-numeric", `{"type":"check_delivery_radius","data":{"lat":"north","lon":37.61}}`, nil, "INVALID_MESSAGE"},
		{"session closed", `{"type":"terminal_select","data":{"ids":[]}}`, heatmap.ErrViewClosed, "SESSION_CLOSED"},
		{"rejected", `{"type":"check_delivery_radius","data":{"lat":1,"lon":1}}`, heatmap.ErrInvalidDateRange, "REJECTED"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmds := &fakeCommands{err: tt.err}
			c := NewClient(NewHub(), nil, "s1", cmds)
			if got := errorCode(t, c.handleInbound([]byte(tt.raw))); got != tt.reply {
				t.Errorf("reply = %q, want %q", got, tt.reply)
			}
		})
	}
}

func TestClient_HandleInbound_ForwardsPayload(t *testing.T) {
	t.Parallel()

	cmds := &fakeCommands{}
	c := NewClient(NewHub(), nil, "s1", cmds)
	c.handleInbound([]byte(`{"type":"terminal_select","data":{"ids":["7","3"]}}`))
	c.handleInbound([]byte(`{"type":"check_delivery_radius","data":{"lat":-33.5,"lon":151}}`))

	if got := cmds.selections(); !reflect.DeepEqual(got, [][]string{{"7", "3"}}) {
		t.Errorf("selections = %v", got)
	}
	if !reflect.DeepEqual(cmds.points, [][2]float64{{-33.5, 151}}) {
		t.Errorf("points = %v", cmds.points)
	}
}

func TestClient_ReadOnly(t *testing.T) {
	t.Parallel()

	c := NewClient(NewHub(), nil, "s1", nil)
	if got := errorCode(t, c.handleInbound([]byte(`{"type":"terminal_select","data":{"ids":["1"]}}`))); got != "READ_ONLY" {
		t.Errorf("reply = %q, want READ_ONLY", got)
	}
}

// wireFrame is an outbound frame as the browser sees it.
type wireFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var f wireFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func TestClient_EndToEnd(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	cmds := &fakeCommands{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(hub, conn, "s1", cmds)
		hub.Register <- client
		client.Start()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.SessionClientCount("s1") == 1 })

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"terminal_select","data":{"ids":["4"]}}`)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(cmds.selections()) == 1 })

	if err := hub.Render(context.Background(), "s1", heatmap.RenderProps{SessionID: "s1", SelectedTerminalIDs: []string{"4"}}); err != nil {
		t.Fatal(err)
	}
	frame := readFrame(t, conn)
	if frame.Type != MessageTypeRender {
		t.Fatalf("Type = %q, want render", frame.Type)
	}
	var props heatmap.RenderProps
	if err := json.Unmarshal(frame.Data, &props); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(props.SelectedTerminalIDs, []string{"4"}) {
		t.Errorf("SelectedTerminalIDs = %v", props.SelectedTerminalIDs)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	if frame := readFrame(t, conn); frame.Type != MessageTypePong {
		t.Errorf("Type = %q, want pong", frame.Type)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return hub.SessionClientCount("s1") == 0 })
}

func TestClient_Constants(t *testing.T) {
	t.Parallel()

	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
	if maxMessageSize <= 0 {
		t.Error("maxMessageSize must be positive")
	}
}
