// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/deliveryheat/internal/config"
	"github.com/tomtom215/deliveryheat/internal/heatmap"
	ws "github.com/tomtom215/deliveryheat/internal/websocket"
)

type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readRender reads frames until a render frame satisfies accept.
func readRender(t *testing.T, conn *websocket.Conn, accept func(heatmap.RenderProps) bool) heatmap.RenderProps {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("SetReadDeadline: %v", err)
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("decode frame %s: %v", raw, err)
		}
		if frame.Type != ws.MessageTypeRender {
			continue
		}
		var props heatmap.RenderProps
		if err := json.Unmarshal(frame.Data, &props); err != nil {
			t.Fatalf("decode props %s: %v", frame.Data, err)
		}
		if accept(props) {
			return props
		}
	}
}

func TestSessionWebSocket_EndToEnd(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "closed", nil)
	id := e.openSession(t, `{"terminal_ids":["1"]}`)

	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + id + "/ws"
	header := http.Header{"Origin": []string{"http://map.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer resp.Body.Close()
	defer conn.Close()

	initial := readRender(t, conn, func(heatmap.RenderProps) bool { return true })
	if len(initial.SelectedTerminalIDs) != 1 || initial.SelectedTerminalIDs[0] != "1" {
		t.Errorf("initial SelectedTerminalIDs = %v", initial.SelectedTerminalIDs)
	}

	msg := `{"type":"check_delivery_radius","data":{"lat":55.75,"lon":37.59}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	props := readRender(t, conn, func(p heatmap.RenderProps) bool { return p.DeliveryRadiusPoint != nil })
	if props.Mode != heatmap.ModeRadiusActive {
		t.Errorf("Mode = %q, want %q", props.Mode, heatmap.ModeRadiusActive)
	}
	if props.DeliveryRadiusPoint.Lat != 55.75 || props.DeliveryRadiusPoint.Lon != 37.59 {
		t.Errorf("DeliveryRadiusPoint = %+v", props.DeliveryRadiusPoint)
	}
}

func TestSessionWebSocket_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "closed", nil)
	id := e.openSession(t, "")

	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + id + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake failure")
	}
	if resp == nil {
		t.Fatalf("expected HTTP response, got error only: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestSessionWebSocket_UnknownSession(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "closed", nil)

	rec, env := e.do(t, http.MethodGet, "/api/v1/sessions/missing/ws", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"listed", []string{"http://map.example"}, "http://map.example", true},
		{"unlisted", []string{"http://map.example"}, "http://other.example", false},
		{"missing", []string{"http://map.example"}, "", false},
		{"wildcard", []string{"*"}, "http://anything.example", true},
		{"empty list", nil, "http://map.example", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := &Handler{config: &config.Config{Security: config.SecurityConfig{CORSOrigins: tt.allowed}}}
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\tdel\x7f", `tab\x09del\x7f`},
		{"Арбат", "Арбат"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	a := generateETag([]byte(`{"status":"success"}`))
	b := generateETag([]byte(`{"status":"success"}`))
	c := generateETag([]byte(`{"status":"error"}`))
	if a != b {
		t.Errorf("same input gave %s and %s", a, b)
	}
	if a == c {
		t.Errorf("different input gave the same tag %s", a)
	}
	if !strings.HasPrefix(a, `"`) || !strings.HasSuffix(a, `"`) {
		t.Errorf("tag %s is not quoted", a)
	}
}
