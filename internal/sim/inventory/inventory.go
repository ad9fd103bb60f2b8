package inventory

import (
	"math"
	"time"
)

// predictionWindow is the trailing history slice used by usage prediction.
const predictionWindow = 30

type Product struct {
	ID           string
	Name         string
	CurrentStock int
	MinStock     int
	MaxStock     int
	ReorderPoint int
	Zone         string
	LastUpdated  time.Time
}

// HistoryEntry is one append-only ledger row. Stock is the level after the
// change was applied.
type HistoryEntry struct {
	Timestamp time.Time
	Stock     int
	Change    int
	Cause     string
}

type ProductSpec struct {
	Name         string
	InitialStock int
	MinStock     int
	MaxStock     int
	ReorderPoint int
	Zone         string
}

type RFIDReader struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Zone     string `json:"zone"`
	LastScan int64  `json:"lastScan,omitempty"`
}

// Domain is the per-product stock ledger with threshold evaluation and
// trailing-window usage prediction.
type Domain struct {
	products map[string]*Product
	order    []string
	history  map[string][]HistoryEntry
	rfid     map[string]RFIDReader

	now func() time.Time
}

func New(zoneIDs []string, now func() time.Time) *Domain {
	d := &Domain{
		products: make(map[string]*Product),
		history:  make(map[string][]HistoryEntry),
		rfid:     make(map[string]RFIDReader, len(zoneIDs)),
		now:      now,
	}
	for _, zone := range zoneIDs {
		id := "rfid_" + zone
		d.rfid[id] = RFIDReader{ID: id, Status: "active", Zone: zone}
	}
	return d
}

// AddProduct registers (or re-registers) a product and seeds its history
// with a single "initial" entry.
func (d *Domain) AddProduct(id string, spec ProductSpec) {
	if _, exists := d.products[id]; !exists {
		d.order = append(d.order, id)
	}
	ts := d.now()
	d.products[id] = &Product{
		ID:           id,
		Name:         spec.Name,
		CurrentStock: spec.InitialStock,
		MinStock:     spec.MinStock,
		MaxStock:     spec.MaxStock,
		ReorderPoint: spec.ReorderPoint,
		Zone:         spec.Zone,
		LastUpdated:  ts,
	}
	d.history[id] = []HistoryEntry{{Timestamp: ts, Stock: spec.InitialStock, Cause: "initial"}}
}

// AdjustStock applies a delta to a product's stock, clamped at zero:
// overdraw is absorbed, never rejected at this layer. Emits stock_updated,
// then reorder_needed when the new level is at or below the reorder point.
// Unknown ids are a no-op with ok=false.
func (d *Domain) AdjustStock(id string, delta int, cause string) (events []Event, ok bool) {
	p := d.products[id]
	if p == nil {
		return nil, false
	}
	old := p.CurrentStock
	next := old + delta
	if next < 0 {
		next = 0
	}
	p.CurrentStock = next
	p.LastUpdated = d.now()

	d.history[id] = append(d.history[id], HistoryEntry{
		Timestamp: p.LastUpdated,
		Stock:     next,
		Change:    delta,
		Cause:     cause,
	})

	events = append(events, StockUpdated{
		ProductID: id,
		OldStock:  old,
		NewStock:  next,
		Change:    delta,
		Cause:     cause,
	})
	if next <= p.ReorderPoint {
		events = append(events, ReorderNeeded{
			ProductID:      id,
			CurrentStock:   next,
			ReorderPoint:   p.ReorderPoint,
			SuggestedOrder: p.MaxStock - next,
		})
	}
	return events, true
}

// PredictAll runs usage prediction for every product over the trailing
// history window. Products without measurable consumption produce no event:
// a days-until figure is undefined when average daily usage is zero.
func (d *Domain) PredictAll() []Event {
	var events []Event
	for _, id := range d.order {
		p := d.products[id]
		hist := d.history[id]
		if p == nil || len(hist) < 2 {
			continue
		}
		window := hist
		if len(window) > predictionWindow {
			window = window[len(window)-predictionWindow:]
		}
		usage := averageDailyUsage(window)
		if usage == 0 {
			continue
		}
		events = append(events, StockPrediction{
			ProductID:        id,
			CurrentStock:     p.CurrentStock,
			AvgDailyUsage:    usage,
			DaysUntilReorder: int(math.Floor(float64(p.CurrentStock-p.ReorderPoint) / usage)),
		})
	}
	return events
}

// averageDailyUsage sums consumption (stock decreases only) across the
// window and divides by the window's timestamp span in days. A zero or
// negative span yields 0.
func averageDailyUsage(hist []HistoryEntry) float64 {
	if len(hist) < 2 {
		return 0
	}
	usage := 0
	for i := 1; i < len(hist); i++ {
		if drop := hist[i-1].Stock - hist[i].Stock; drop > 0 {
			usage += drop
		}
	}
	span := hist[len(hist)-1].Timestamp.Sub(hist[0].Timestamp)
	days := span.Hours() / 24
	if days <= 0 {
		return 0
	}
	return float64(usage) / days
}

func (d *Domain) Product(id string) (Product, bool) {
	p := d.products[id]
	if p == nil {
		return Product{}, false
	}
	return *p, true
}

// History returns a copy of a product's ledger.
func (d *Domain) History(id string) []HistoryEntry {
	src := d.history[id]
	out := make([]HistoryEntry, len(src))
	copy(out, src)
	return out
}
