package inventory

// Status is the wire view of the inventory domain, merged into snapshots.
type Status struct {
	Products    map[string]ProductStatus `json:"products"`
	RFIDSensors map[string]RFIDReader    `json:"rfidSensors"`
	Predictions []UsageSummary           `json:"predictions"`
}

type ProductStatus struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	CurrentStock int    `json:"currentStock"`
	MinStock     int    `json:"minStock"`
	MaxStock     int    `json:"maxStock"`
	ReorderPoint int    `json:"reorderPoint"`
	Zone         string `json:"zone"`
	LastUpdated  int64  `json:"lastUpdated"`
}

// UsageSummary carries the full-history average daily usage per product.
type UsageSummary struct {
	ProductID     string  `json:"productId"`
	AvgDailyUsage float64 `json:"avgDailyUsage"`
}

func (d *Domain) Snapshot() Status {
	s := Status{
		Products:    make(map[string]ProductStatus, len(d.order)),
		RFIDSensors: make(map[string]RFIDReader, len(d.rfid)),
		Predictions: make([]UsageSummary, 0, len(d.order)),
	}
	for _, id := range d.order {
		p := d.products[id]
		s.Products[id] = ProductStatus{
			ID:           p.ID,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
			MaxStock:     p.MaxStock,
			ReorderPoint: p.ReorderPoint,
			Zone:         p.Zone,
			LastUpdated:  p.LastUpdated.UnixMilli(),
		}
		s.Predictions = append(s.Predictions, UsageSummary{
			ProductID:     id,
			AvgDailyUsage: averageDailyUsage(d.history[id]),
		})
	}
	for id, r := range d.rfid {
		s.RFIDSensors[id] = r
	}
	return s
}
