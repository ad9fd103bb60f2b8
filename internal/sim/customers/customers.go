package customers

import (
	"fmt"
	"math/rand"
	"time"
)

// Pattern is static behavior configuration, read-only at runtime.
type Pattern struct {
	Name                   string
	AvgTimeInStore         time.Duration
	InteractionProbability float64
	PurchaseProbability    float64
}

type Agent struct {
	ID           string
	Pattern      string
	EntryTime    time.Time
	CurrentZone  string
	VisitedZones []string
	Interactions int
	Purchases    int
}

// HeatMapEntry accumulates per-zone customer statistics. Counters are
// monotonically non-decreasing for the process lifetime.
type HeatMapEntry struct {
	Visits       int
	TotalTime    time.Duration
	Interactions int
	Purchases    int
}

// Domain owns the virtual-agent population and the zone heat map.
type Domain struct {
	active   map[string]*Agent
	order    []string
	patterns []Pattern
	heat     map[string]*HeatMapEntry
	zoneIDs  []string

	rng     *rand.Rand
	now     func() time.Time
	nextNum uint64
}

func New(zoneIDs []string, patterns []Pattern, rng *rand.Rand, now func() time.Time) *Domain {
	d := &Domain{
		active:   make(map[string]*Agent),
		patterns: patterns,
		heat:     make(map[string]*HeatMapEntry, len(zoneIDs)),
		zoneIDs:  append([]string(nil), zoneIDs...),
		rng:      rng,
		now:      now,
	}
	for _, zone := range zoneIDs {
		d.heat[zone] = &HeatMapEntry{}
	}
	return d
}

// Spawn creates a virtual customer with a uniformly sampled behavior pattern.
func (d *Domain) Spawn() (Agent, Event) {
	d.nextNum++
	pattern := d.patterns[d.rng.Intn(len(d.patterns))]
	a := &Agent{
		ID:           fmt.Sprintf("cust_%06d", d.nextNum),
		Pattern:      pattern.Name,
		EntryTime:    d.now(),
		VisitedZones: []string{},
	}
	d.active[a.ID] = a
	d.order = append(d.order, a.ID)
	return *a, CustomerEntered{
		CustomerID: a.ID,
		Pattern:    a.Pattern,
		EntryTime:  a.EntryTime.UnixMilli(),
	}
}

// Move places an agent into a zone, recording a first-time visit in both the
// agent's visited set and the zone heat map. Unknown agent or zone ids are
// no-ops with ok=false.
func (d *Domain) Move(id, zone string) (Event, bool) {
	a := d.active[id]
	heat := d.heat[zone]
	if a == nil || heat == nil {
		return nil, false
	}
	from := a.CurrentZone
	a.CurrentZone = zone
	if !contains(a.VisitedZones, zone) {
		a.VisitedZones = append(a.VisitedZones, zone)
	}
	heat.Visits++
	return CustomerMoved{
		CustomerID: id,
		FromZone:   from,
		ToZone:     zone,
		Timestamp:  d.now().UnixMilli(),
	}, true
}

// Interact runs one Bernoulli trial against the agent's pattern. A failed
// trial returns a nil event with ok=true: the agent was found, nothing
// happened.
func (d *Domain) Interact(id string) (Event, bool) {
	a := d.active[id]
	if a == nil {
		return nil, false
	}
	if a.CurrentZone == "" {
		return nil, true
	}
	p := d.pattern(a.Pattern)
	if d.rng.Float64() >= p.InteractionProbability {
		return nil, true
	}
	a.Interactions++
	d.heat[a.CurrentZone].Interactions++
	return CustomerInteraction{
		CustomerID:       id,
		Zone:             a.CurrentZone,
		Timestamp:        d.now().UnixMilli(),
		InteractionCount: a.Interactions,
	}, true
}

// Purchase is the same mechanism as Interact, keyed on purchase probability.
func (d *Domain) Purchase(id string) (Event, bool) {
	a := d.active[id]
	if a == nil {
		return nil, false
	}
	if a.CurrentZone == "" {
		return nil, true
	}
	p := d.pattern(a.Pattern)
	if d.rng.Float64() >= p.PurchaseProbability {
		return nil, true
	}
	a.Purchases++
	d.heat[a.CurrentZone].Purchases++
	return CustomerPurchase{
		CustomerID:    id,
		Zone:          a.CurrentZone,
		Timestamp:     d.now().UnixMilli(),
		PurchaseCount: a.Purchases,
	}, true
}

// Depart removes an agent, folding its dwell time evenly across every zone
// it visited.
func (d *Domain) Depart(id string) (Event, bool) {
	a := d.active[id]
	if a == nil {
		return nil, false
	}
	dwell := d.now().Sub(a.EntryTime)
	if n := len(a.VisitedZones); n > 0 {
		share := dwell / time.Duration(n)
		for _, zone := range a.VisitedZones {
			if heat := d.heat[zone]; heat != nil {
				heat.TotalTime += share
			}
		}
	}
	delete(d.active, id)
	d.order = remove(d.order, id)
	return CustomerLeft{
		CustomerID:   id,
		TimeInStore:  dwell.Milliseconds(),
		VisitedZones: a.VisitedZones,
		Interactions: a.Interactions,
		Purchases:    a.Purchases,
	}, true
}

// Active returns the live agents in spawn order.
func (d *Domain) Active() []Agent {
	out := make([]Agent, 0, len(d.order))
	for _, id := range d.order {
		if a := d.active[id]; a != nil {
			out = append(out, *a)
		}
	}
	return out
}

func (d *Domain) HeatMap(zone string) (HeatMapEntry, bool) {
	h := d.heat[zone]
	if h == nil {
		return HeatMapEntry{}, false
	}
	return *h, true
}

func (d *Domain) Zones() []string { return append([]string(nil), d.zoneIDs...) }

func (d *Domain) pattern(name string) Pattern {
	for _, p := range d.patterns {
		if p.Name == name {
			return p
		}
	}
	return Pattern{}
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func remove(xs []string, s string) []string {
	for i, x := range xs {
		if x == s {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return xs
}
