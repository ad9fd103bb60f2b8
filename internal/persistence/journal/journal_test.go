package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"retailtwin.io/internal/sim/world"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	j := NewWriter(dir, "events")

	entries := []world.SinkEntry{
		{Timestamp: 1700000000000, Envelope: "inventory_event", Event: "stock_updated", Data: map[string]any{"productId": "P1"}},
		{Timestamp: 1700000001000, Envelope: "security_event", Event: "new_alert", Data: map[string]any{"zone": "A1"}},
	}
	for _, e := range entries {
		if err := j.WriteEvent(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("files = %d, want 1", len(names))
	}
	name := names[0].Name()
	if !strings.HasPrefix(name, "events-") || !strings.HasSuffix(name, ".jsonl.zst") {
		t.Fatalf("file name = %q", name)
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var got []world.SinkEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e world.SinkEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line: %v", err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(entries) {
		t.Fatalf("entries = %d, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i].Timestamp != entries[i].Timestamp || got[i].Envelope != entries[i].Envelope || got[i].Event != entries[i].Event {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestCloseWithoutWrites(t *testing.T) {
	j := NewWriter(t.TempDir(), "events")
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
