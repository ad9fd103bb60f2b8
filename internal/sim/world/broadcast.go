package world

import (
	"encoding/json"

	"retailtwin.io/internal/protocol"
	"retailtwin.io/internal/sim/customers"
	"retailtwin.io/internal/sim/inventory"
	"retailtwin.io/internal/sim/layout"
	"retailtwin.io/internal/sim/security"
)

// broadcast serializes a frame once and fans it out to every open
// connection. Delivery is best-effort, at-most-once per connection.
func (w *World) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.logger.Printf("broadcast marshal: %v", err)
		return
	}
	for _, c := range w.clients {
		sendLatest(c.Out, b)
	}
}

// sendTo queues a frame for a single connection.
func (w *World) sendTo(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.logger.Printf("send marshal: %v", err)
		return
	}
	sendLatest(out, b)
}

// sendToConn queues a frame for the connection with the given id, if still
// open.
func (w *World) sendToConn(connID string, v any) {
	c, ok := w.clients[connID]
	if !ok {
		return
	}
	w.sendTo(c.Out, v)
}

// sendLatest enqueues without blocking; when the client's queue is full the
// oldest frame is dropped to make room.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func (w *World) record(envelope, event string, data any) {
	if len(w.cfg.Sinks) == 0 {
		return
	}
	entry := SinkEntry{
		Timestamp: w.now().UnixMilli(),
		Envelope:  envelope,
		Event:     event,
		Data:      data,
	}
	for _, s := range w.cfg.Sinks {
		if err := s.WriteEvent(entry); err != nil {
			w.logger.Printf("event sink: %v", err)
		}
	}
}

func (w *World) broadcastSecurityEvent(ev security.Event) {
	w.broadcast(protocol.EventMsg{Type: protocol.TypeSecurityEvent, Event: ev.Kind(), Data: ev})
	w.record(protocol.TypeSecurityEvent, ev.Kind(), ev)
}

func (w *World) broadcastInventoryEvent(ev inventory.Event) {
	w.broadcast(protocol.EventMsg{Type: protocol.TypeInventoryEvent, Event: ev.Kind(), Data: ev})
	w.record(protocol.TypeInventoryEvent, ev.Kind(), ev)
}

func (w *World) broadcastCustomerEvent(ev customers.Event) {
	w.broadcast(protocol.EventMsg{Type: protocol.TypeCustomerEvent, Event: ev.Kind(), Data: ev})
	w.record(protocol.TypeCustomerEvent, ev.Kind(), ev)
}

func (w *World) broadcastLayoutEvent(ev layout.Event) {
	w.broadcast(protocol.EventMsg{Type: protocol.TypeLayoutEvent, Event: ev.Kind(), Data: ev})
	w.record(protocol.TypeLayoutEvent, ev.Kind(), ev)
}

func (w *World) broadcastLayoutWarning(zoneID string, validation layout.Validation) {
	msg := protocol.LayoutWarningMsg{
		Type:       protocol.TypeLayoutWarning,
		ZoneID:     zoneID,
		Validation: validation,
	}
	w.broadcast(msg)
	w.record(protocol.TypeLayoutWarning, "", msg)
}

func (w *World) broadcastStatusUpdate() {
	w.broadcast(protocol.StatusUpdateMsg{
		Type:      protocol.TypeStatusUpdate,
		Timestamp: w.now().UnixMilli(),
		Data:      w.snapshotData(),
	})
}
