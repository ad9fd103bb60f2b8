package layout

import "retailtwin.io/internal/sim/zones"

// Status is the wire view of the layout domain, merged into snapshots.
type Status struct {
	Zones   map[string]zones.Status `json:"zones"`
	Objects map[string]Object       `json:"objects"`
	Metrics []ZoneMetrics           `json:"metrics"`
}

type ZoneMetrics struct {
	ZoneID string `json:"zoneId"`
	Optimization
}

func (d *Domain) Snapshot() Status {
	s := Status{
		Zones:   d.zones.Snapshot(),
		Objects: make(map[string]Object, len(d.order)),
		Metrics: make([]ZoneMetrics, 0, d.zones.Len()),
	}
	for _, id := range d.order {
		s.Objects[id] = *d.objects[id]
	}
	for _, zoneID := range d.zones.IDs() {
		if opt, ok := d.Optimize(zoneID); ok {
			s.Metrics = append(s.Metrics, ZoneMetrics{ZoneID: zoneID, Optimization: opt})
		}
	}
	return s
}
