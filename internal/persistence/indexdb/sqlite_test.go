package indexdb

import (
	"path/filepath"
	"strings"
	"testing"

	"retailtwin.io/internal/sim/world"
)

func TestWriteAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	entries := []world.SinkEntry{
		{Timestamp: 1, Envelope: "inventory_event", Event: "stock_updated", Data: map[string]any{"productId": "P1"}},
		{Timestamp: 2, Envelope: "inventory_event", Event: "reorder_needed", Data: map[string]any{"productId": "P1"}},
		{Timestamp: 3, Envelope: "security_event", Event: "new_alert", Data: map[string]any{"zone": "A1"}},
	}
	for _, e := range entries {
		if err := idx.WriteEvent(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// Close drains the queue before the db handle is released.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	idx, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	n, err := idx.CountEvents("inventory_event", "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("inventory_event rows = %d, want 2", n)
	}
	n, err = idx.CountEvents("inventory_event", "reorder_needed")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("reorder_needed rows = %d, want 1", n)
	}

	recent, err := idx.RecentEvents(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent rows = %d, want 2", len(recent))
	}
	if recent[0].Event != "new_alert" || recent[1].Event != "reorder_needed" {
		t.Fatalf("recent order = %+v", recent)
	}
	if !strings.Contains(recent[0].Data, `"zone":"A1"`) {
		t.Fatalf("recent data = %q", recent[0].Data)
	}
}

func TestWriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.WriteEvent(world.SinkEntry{Timestamp: 1, Envelope: "x"}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
