package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"retailtwin.io/internal/protocol"
	"retailtwin.io/internal/sim/tuning"
	"retailtwin.io/internal/sim/world"
)

type frame struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Result  json.RawMessage `json:"result"`
}

func startServer(t *testing.T) string {
	t.Helper()

	// Tick intervals pushed out so only frames caused by the test arrive.
	tn := tuning.Defaults()
	tn.UpdateIntervalMs = 3600000
	tn.CustomerIntervalMs = 3600000
	tn.StockPredictionIntervalMs = 3600000
	tn.LayoutValidationIntervalMs = 3600000

	w := world.New(world.Config{
		Tuning: tn,
		Logger: log.New(io.Discard, "", 0),
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()

	srv := NewServer(w, log.New(io.Discard, "", 0))
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		t.Fatalf("frame: %v", err)
	}
	return f
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestInitialDataOnConnect(t *testing.T) {
	url := startServer(t)
	conn := dial(t, url)

	f := readFrame(t, conn)
	if f.Type != protocol.TypeInitialData {
		t.Fatalf("first frame = %s, want initial_data", f.Type)
	}
	var data struct {
		Temperature map[string]json.RawMessage `json:"temperature"`
	}
	if err := json.Unmarshal(f.Data, &data); err != nil {
		t.Fatalf("initial_data payload: %v", err)
	}
	if len(data.Temperature) != 4 {
		t.Fatalf("temperature zones = %d, want 4", len(data.Temperature))
	}
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	url := startServer(t)
	conn := dial(t, url)
	readFrame(t, conn) // initial_data

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := readFrame(t, conn)
	if f.Type != protocol.TypeError || f.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("error frame = %+v", f)
	}

	// The connection still serves commands after the error.
	send(t, conn, protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "add_product",
		ProductID: "P1",
		Product:   &protocol.ProductPayload{InitialStock: 50, MaxStock: 100, ReorderPoint: 5, Zone: "A1"},
	})
	f = readFrame(t, conn)
	if f.Type != protocol.TypeResponse || f.Status != "ok" {
		t.Fatalf("response frame = %+v", f)
	}
}

func TestCommandEventOrdering(t *testing.T) {
	url := startServer(t)
	conn := dial(t, url)
	readFrame(t, conn) // initial_data

	send(t, conn, protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "add_product",
		ProductID: "P1",
		Product:   &protocol.ProductPayload{InitialStock: 50, MaxStock: 100, ReorderPoint: 20, Zone: "A1"},
	})
	if f := readFrame(t, conn); f.Type != protocol.TypeResponse {
		t.Fatalf("add_product reply = %+v", f)
	}

	send(t, conn, protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "update_stock",
		ProductID: "P1",
		Quantity:  -35,
		Cause:     "sale",
	})
	f := readFrame(t, conn)
	if f.Type != protocol.TypeInventoryEvent || f.Event != "stock_updated" {
		t.Fatalf("first event = %+v", f)
	}
	f = readFrame(t, conn)
	if f.Type != protocol.TypeInventoryEvent || f.Event != "reorder_needed" {
		t.Fatalf("second event = %+v", f)
	}
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	url := startServer(t)
	conn1 := dial(t, url)
	conn2 := dial(t, url)
	readFrame(t, conn1)
	readFrame(t, conn2)

	send(t, conn1, protocol.LayoutCommandMsg{
		Type:    protocol.TypeLayoutCommand,
		Command: "add_object",
		ZoneID:  "A1",
		Object:  &protocol.ObjectPayload{Width: 2, Length: 2, Height: 1, Position: protocol.Position{X: 1, Y: 1}},
	})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		f := readFrame(t, conn)
		if f.Type != protocol.TypeLayoutEvent || f.Event != "object_added" {
			t.Fatalf("broadcast frame = %+v", f)
		}
	}
	// Only the issuer gets the direct response.
	if f := readFrame(t, conn1); f.Type != protocol.TypeResponse {
		t.Fatalf("issuer reply = %+v", f)
	}
}
