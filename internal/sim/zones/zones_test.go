package zones

import (
	"testing"
	"time"
)

func TestRegistry(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	r := NewRegistry([]Spec{
		{ID: "A1", Width: 10, Length: 10, Height: 3},
		{ID: "B1", Width: 8, Length: 12, Height: 3},
		{ID: "A1", Width: 99, Length: 99, Height: 9}, // duplicate ignored
	}, now)

	if r.Len() != 2 {
		t.Fatalf("len = %d", r.Len())
	}
	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "A1" || ids[1] != "B1" {
		t.Fatalf("ids = %v", ids)
	}

	z, ok := r.Get("A1")
	if !ok || z.Width != 10 {
		t.Fatalf("duplicate must not overwrite: %+v", z)
	}
	if z.TotalArea() != 100 {
		t.Fatalf("total area = %f", z.TotalArea())
	}

	snap := r.Snapshot()
	if snap["B1"].Dimensions.Length != 12 {
		t.Fatalf("snapshot = %+v", snap["B1"])
	}
	if snap["A1"].LastModified != now.UnixMilli() {
		t.Fatalf("lastModified = %d", snap["A1"].LastModified)
	}
}
