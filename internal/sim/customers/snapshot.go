package customers

// Analytics is the wire view of the customer domain, merged into snapshots.
type Analytics struct {
	TotalCustomers      int                      `json:"totalCustomers"`
	HeatMap             map[string]HeatMapStatus `json:"heatMap"`
	PatternDistribution []PatternCount           `json:"patternDistribution"`
}

type HeatMapStatus struct {
	Visits       int   `json:"visits"`
	TotalTime    int64 `json:"totalTime"` // millis
	Interactions int   `json:"interactions"`
	Purchases    int   `json:"purchases"`
}

type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

func (d *Domain) Snapshot() Analytics {
	a := Analytics{
		TotalCustomers:      len(d.active),
		HeatMap:             make(map[string]HeatMapStatus, len(d.heat)),
		PatternDistribution: make([]PatternCount, 0, len(d.patterns)),
	}
	for _, zone := range d.zoneIDs {
		h := d.heat[zone]
		a.HeatMap[zone] = HeatMapStatus{
			Visits:       h.Visits,
			TotalTime:    h.TotalTime.Milliseconds(),
			Interactions: h.Interactions,
			Purchases:    h.Purchases,
		}
	}
	for _, p := range d.patterns {
		n := 0
		for _, agent := range d.active {
			if agent.Pattern == p.Name {
				n++
			}
		}
		a.PatternDistribution = append(a.PatternDistribution, PatternCount{Pattern: p.Name, Count: n})
	}
	return a
}
