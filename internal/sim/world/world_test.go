package world

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"retailtwin.io/internal/protocol"
	"retailtwin.io/internal/sim/inventory"
	"retailtwin.io/internal/sim/layout"
	"retailtwin.io/internal/sim/tuning"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type frame struct {
	Type       string          `json:"type"`
	Event      string          `json:"event"`
	Data       json.RawMessage `json:"data"`
	Timestamp  int64           `json:"timestamp"`
	ZoneID     string          `json:"zoneId"`
	Status     string          `json:"status"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Result     json.RawMessage `json:"result"`
	Validation json.RawMessage `json:"validation"`
}

func newWorld(t *testing.T) (*World, *clock) {
	t.Helper()
	c := &clock{t: time.UnixMilli(1700000000000)}
	w := New(Config{
		Tuning: tuning.Defaults(),
		Logger: log.New(io.Discard, "", 0),
		Now:    c.now,
	})
	return w, c
}

func drain(t *testing.T, out chan []byte) []frame {
	t.Helper()
	var frames []frame
	for {
		select {
		case b := <-out:
			var f frame
			if err := json.Unmarshal(b, &f); err != nil {
				t.Fatalf("frame: %v", err)
			}
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func command(connID string, v any) CommandEnvelope {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	base, _ := protocol.DecodeBase(raw)
	return CommandEnvelope{ConnID: connID, Type: base.Type, Raw: raw}
}

func TestJoinSendsInitialDataFirst(t *testing.T) {
	w, _ := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})

	w.dispatch(command("c1", protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "add_product",
		ProductID: "P1",
		Product:   &protocol.ProductPayload{InitialStock: 50, MinStock: 10, MaxStock: 100, ReorderPoint: 20, Zone: "A1"},
	}))
	w.dispatch(command("c1", protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "update_stock",
		ProductID: "P1",
		Quantity:  -35,
		Cause:     "sale",
	}))

	frames := drain(t, out)
	if len(frames) != 4 {
		t.Fatalf("frames = %d", len(frames))
	}
	if frames[0].Type != protocol.TypeInitialData {
		t.Fatalf("first frame = %s, want initial_data", frames[0].Type)
	}
	if frames[1].Type != protocol.TypeResponse || frames[1].Status != "ok" {
		t.Fatalf("second frame = %+v", frames[1])
	}
	if frames[2].Type != protocol.TypeInventoryEvent || frames[2].Event != "stock_updated" {
		t.Fatalf("third frame = %+v", frames[2])
	}
	if frames[3].Type != protocol.TypeInventoryEvent || frames[3].Event != "reorder_needed" {
		t.Fatalf("fourth frame = %+v", frames[3])
	}

	var upd struct {
		OldStock int `json:"oldStock"`
		NewStock int `json:"newStock"`
	}
	if err := json.Unmarshal(frames[2].Data, &upd); err != nil {
		t.Fatalf("stock_updated data: %v", err)
	}
	if upd.OldStock != 50 || upd.NewStock != 15 {
		t.Fatalf("stock_updated = %+v", upd)
	}
	var ro struct {
		SuggestedOrder int `json:"suggestedOrder"`
	}
	if err := json.Unmarshal(frames[3].Data, &ro); err != nil {
		t.Fatalf("reorder_needed data: %v", err)
	}
	if ro.SuggestedOrder != 85 {
		t.Fatalf("suggestedOrder = %d", ro.SuggestedOrder)
	}
}

func TestBroadcastOrderAcrossConnections(t *testing.T) {
	w, _ := newWorld(t)
	out1 := make(chan []byte, 64)
	out2 := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out1})
	w.handleJoin(JoinRequest{ConnID: "c2", Out: out2})

	w.dispatch(command("c1", protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "add_product",
		ProductID: "P1",
		Product:   &protocol.ProductPayload{InitialStock: 100, MaxStock: 100, ReorderPoint: 5, Zone: "A1"},
	}))
	for i := 0; i < 5; i++ {
		w.dispatch(command("c1", protocol.InventoryCommandMsg{
			Type:      protocol.TypeInventoryCommand,
			Command:   "update_stock",
			ProductID: "P1",
			Quantity:  -10,
			Cause:     fmt.Sprintf("sale_%d", i),
		}))
	}

	extract := func(frames []frame) []string {
		var causes []string
		for _, f := range frames {
			if f.Type != protocol.TypeInventoryEvent || f.Event != "stock_updated" {
				continue
			}
			var d struct {
				Cause string `json:"cause"`
			}
			if err := json.Unmarshal(f.Data, &d); err != nil {
				t.Fatalf("data: %v", err)
			}
			causes = append(causes, d.Cause)
		}
		return causes
	}

	c1 := extract(drain(t, out1))
	c2 := extract(drain(t, out2))
	if len(c1) != 5 || len(c2) != 5 {
		t.Fatalf("event counts = %d / %d", len(c1), len(c2))
	}
	for i := range c1 {
		want := fmt.Sprintf("sale_%d", i)
		if c1[i] != want || c2[i] != want {
			t.Fatalf("emission order broken: %v / %v", c1, c2)
		}
	}
}

func TestUnknownTypeAcknowledged(t *testing.T) {
	w, _ := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})
	drain(t, out)

	w.dispatch(CommandEnvelope{ConnID: "c1", Type: "mystery", Raw: []byte(`{"type":"mystery"}`)})
	frames := drain(t, out)
	if len(frames) != 1 || frames[0].Type != protocol.TypeResponse || frames[0].Status != "ok" {
		t.Fatalf("frames = %+v", frames)
	}
}

func TestLayoutCollisionErrorOnlyToIssuer(t *testing.T) {
	w, _ := newWorld(t)
	out1 := make(chan []byte, 64)
	out2 := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out1})
	w.handleJoin(JoinRequest{ConnID: "c2", Out: out2})
	drain(t, out1)
	drain(t, out2)

	place := protocol.LayoutCommandMsg{
		Type:    protocol.TypeLayoutCommand,
		Command: "add_object",
		ZoneID:  "A1",
		Object:  &protocol.ObjectPayload{Width: 2, Length: 2, Height: 1, Position: protocol.Position{X: 1, Y: 1}},
	}
	w.dispatch(command("c1", place))
	w.dispatch(command("c2", place)) // identical position: collision

	f1 := drain(t, out1)
	f2 := drain(t, out2)

	// Issuer of the success: object_added broadcast + direct response.
	if len(f1) != 2 || f1[0].Event != "object_added" || f1[1].Type != protocol.TypeResponse {
		t.Fatalf("c1 frames = %+v", f1)
	}
	// Issuer of the collision: the broadcast event plus its own error.
	if len(f2) != 2 || f2[0].Event != "object_added" {
		t.Fatalf("c2 frames = %+v", f2)
	}
	if f2[1].Type != protocol.TypeError || f2[1].Code != protocol.ErrCollision {
		t.Fatalf("c2 error frame = %+v", f2[1])
	}
}

func TestValidateAndOptimizeZoneCommands(t *testing.T) {
	w, _ := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})
	drain(t, out)

	w.dispatch(command("c1", protocol.LayoutCommandMsg{
		Type:    protocol.TypeLayoutCommand,
		Command: "validate_zone",
		ZoneID:  "A1",
	}))
	w.dispatch(command("c1", protocol.LayoutCommandMsg{
		Type:    protocol.TypeLayoutCommand,
		Command: "optimize_zone",
		ZoneID:  "A1",
	}))
	w.dispatch(command("c1", protocol.LayoutCommandMsg{
		Type:    protocol.TypeLayoutCommand,
		Command: "validate_zone",
		ZoneID:  "ZZ",
	}))

	frames := drain(t, out)
	if len(frames) != 3 {
		t.Fatalf("frames = %+v", frames)
	}
	if frames[0].Type != protocol.TypeResponse || frames[1].Type != protocol.TypeResponse {
		t.Fatalf("expected responses, got %+v", frames[:2])
	}
	if frames[2].Type != protocol.TypeError || frames[2].Code != protocol.ErrUnknownZone {
		t.Fatalf("unknown zone frame = %+v", frames[2])
	}
}

func TestSensorTickBroadcastsStatusUpdate(t *testing.T) {
	w, _ := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})
	drain(t, out)

	w.SensorTick()
	frames := drain(t, out)
	if len(frames) == 0 {
		t.Fatalf("no frames after sensor tick")
	}
	last := frames[len(frames)-1]
	if last.Type != protocol.TypeStatusUpdate {
		t.Fatalf("last frame = %s, want status_update", last.Type)
	}
	// Any frames before it are security events from motion readings.
	for _, f := range frames[:len(frames)-1] {
		if f.Type != protocol.TypeSecurityEvent {
			t.Fatalf("unexpected frame before status_update: %+v", f)
		}
	}

	var data SnapshotData
	if err := json.Unmarshal(last.Data, &data); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(data.Temperature) != 4 || len(data.Motion) != 4 {
		t.Fatalf("snapshot sensor groups = %+v", data)
	}
}

func TestPredictionTick(t *testing.T) {
	w, c := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})
	drain(t, out)

	w.Inventory().AddProduct("P1", inventory.ProductSpec{InitialStock: 100, MaxStock: 200, ReorderPoint: 10, Zone: "A1"})
	for i := 0; i < 3; i++ {
		c.advance(24 * time.Hour)
		w.Inventory().AdjustStock("P1", -10, "sale")
	}

	w.PredictionTick()
	frames := drain(t, out)
	if len(frames) != 1 || frames[0].Event != "stock_prediction" {
		t.Fatalf("frames = %+v", frames)
	}
}

func TestLayoutTickWarnsOnCrowdedZone(t *testing.T) {
	w, _ := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})
	drain(t, out)

	// Fill A1 to 80% occupancy so evacuation validation fails.
	if _, _, err := w.Layout().AddObject("A1", layout.ObjectSpec{
		Width: 8, Length: 10, Height: 1,
	}); err != nil {
		t.Fatalf("placement: %v", err)
	}
	drain(t, out)

	w.LayoutTick()
	frames := drain(t, out)
	if len(frames) != 1 {
		t.Fatalf("frames = %+v", frames)
	}
	if frames[0].Type != protocol.TypeLayoutWarning || frames[0].ZoneID != "A1" {
		t.Fatalf("warning = %+v", frames[0])
	}
}

func TestCustomerTickKeepsPopulationConsistent(t *testing.T) {
	w, _ := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})
	drain(t, out)

	for i := 0; i < 50; i++ {
		w.CustomerTick()
		for _, agent := range w.Customers().Active() {
			if agent.CurrentZone == "" {
				continue
			}
			if _, ok := w.Customers().HeatMap(agent.CurrentZone); !ok {
				t.Fatalf("agent in unregistered zone %q", agent.CurrentZone)
			}
		}
		for _, f := range drain(t, out) {
			if f.Type != protocol.TypeCustomerEvent {
				t.Fatalf("unexpected frame from customer tick: %+v", f)
			}
		}
	}
}

func TestLeaveRemovesFromFanOut(t *testing.T) {
	w, _ := newWorld(t)
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})
	drain(t, out)

	w.handleLeave("c1")
	w.SensorTick()
	if frames := drain(t, out); len(frames) != 0 {
		t.Fatalf("closed connection still receives frames: %+v", frames)
	}
}

type captureSink struct {
	entries []SinkEntry
}

func (s *captureSink) WriteEvent(e SinkEntry) error {
	s.entries = append(s.entries, e)
	return nil
}

func TestEventSinkObservesBroadcasts(t *testing.T) {
	sink := &captureSink{}
	c := &clock{t: time.UnixMilli(1700000000000)}
	w := New(Config{
		Tuning: tuning.Defaults(),
		Logger: log.New(io.Discard, "", 0),
		Now:    c.now,
		Sinks:  []EventSink{sink},
	})
	out := make(chan []byte, 64)
	w.handleJoin(JoinRequest{ConnID: "c1", Out: out})

	w.dispatch(command("c1", protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "add_product",
		ProductID: "P1",
		Product:   &protocol.ProductPayload{InitialStock: 10, MaxStock: 100, ReorderPoint: 20, Zone: "A1"},
	}))
	w.dispatch(command("c1", protocol.InventoryCommandMsg{
		Type:      protocol.TypeInventoryCommand,
		Command:   "update_stock",
		ProductID: "P1",
		Quantity:  -2,
		Cause:     "sale",
	}))

	// stock_updated + reorder_needed (10-2=8 <= 20).
	if len(sink.entries) != 2 {
		t.Fatalf("sink entries = %+v", sink.entries)
	}
	if sink.entries[0].Event != "stock_updated" || sink.entries[1].Event != "reorder_needed" {
		t.Fatalf("sink order = %+v", sink.entries)
	}
	if sink.entries[0].Envelope != protocol.TypeInventoryEvent {
		t.Fatalf("sink envelope = %q", sink.entries[0].Envelope)
	}
}
