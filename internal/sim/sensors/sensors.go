package sensors

import (
	"math/rand"
	"time"
)

type Kind string

const (
	Temperature Kind = "temperature"
	Humidity    Kind = "humidity"
	Pressure    Kind = "pressure"
	Motion      Kind = "motion"
	Stock       Kind = "stock"
)

// Kinds lists every metric kind in snapshot order.
var Kinds = []Kind{Temperature, Humidity, Pressure, Motion, Stock}

var prefixes = map[Kind]string{
	Temperature: "temp_",
	Humidity:    "hum_",
	Pressure:    "press_",
	Motion:      "motion_",
	Stock:       "stock_",
}

type Reading struct {
	ID        string
	Zone      string
	Value     float64
	UpdatedAt time.Time
}

// MotionReading is what gets forwarded to the security domain after a tick.
type MotionReading struct {
	Zone  string
	Value float64
}

// Manager owns every synthetic reading. It never fails, it only produces
// values.
type Manager struct {
	readings map[Kind]map[string]*Reading
	zoneIDs  []string

	rng *rand.Rand
	now func() time.Time
}

func New(zoneIDs []string, rng *rand.Rand, now func() time.Time) *Manager {
	m := &Manager{
		readings: make(map[Kind]map[string]*Reading, len(Kinds)),
		zoneIDs:  append([]string(nil), zoneIDs...),
		rng:      rng,
		now:      now,
	}
	ts := now()
	for _, kind := range Kinds {
		m.readings[kind] = make(map[string]*Reading, len(zoneIDs))
	}
	for _, zone := range zoneIDs {
		m.set(Temperature, zone, 20+m.rng.Float64()*5, ts)
		m.set(Humidity, zone, 50+m.rng.Float64()*20, ts)
		m.set(Pressure, zone, 1013+m.rng.Float64()*10, ts)
		m.set(Motion, zone, bernoulli(m.rng, 0.5), ts)
		m.set(Stock, zone, float64(m.rng.Intn(100)), ts)
	}
	return m
}

func (m *Manager) set(kind Kind, zone string, value float64, ts time.Time) {
	id := prefixes[kind] + zone
	m.readings[kind][id] = &Reading{ID: id, Zone: zone, Value: value, UpdatedAt: ts}
}

// Tick perturbs every reading by a small bounded delta per metric kind and
// returns the motion readings for the security domain.
func (m *Manager) Tick() []MotionReading {
	ts := m.now()
	for _, r := range m.readings[Temperature] {
		r.Value += (m.rng.Float64() - 0.5) * 0.5
		r.UpdatedAt = ts
	}
	for _, r := range m.readings[Humidity] {
		r.Value += (m.rng.Float64() - 0.5) * 2
		r.UpdatedAt = ts
	}
	for _, r := range m.readings[Pressure] {
		r.Value += (m.rng.Float64() - 0.5) * 1
		r.UpdatedAt = ts
	}
	for _, r := range m.readings[Motion] {
		r.Value = bernoulli(m.rng, 0.3)
		r.UpdatedAt = ts
	}
	for _, r := range m.readings[Stock] {
		if m.rng.Float64() > 0.9 {
			if m.rng.Float64() > 0.5 {
				r.Value++
			} else {
				r.Value--
			}
			r.UpdatedAt = ts
		}
	}

	motions := make([]MotionReading, 0, len(m.zoneIDs))
	for _, zone := range m.zoneIDs {
		r := m.readings[Motion][prefixes[Motion]+zone]
		motions = append(motions, MotionReading{Zone: zone, Value: r.Value})
	}
	return motions
}

func bernoulli(rng *rand.Rand, p float64) float64 {
	if rng.Float64() < p {
		return 1
	}
	return 0
}

// ReadingStatus is the wire view of one reading.
type ReadingStatus struct {
	Value     float64 `json:"value"`
	Zone      string  `json:"zone"`
	UpdatedAt int64   `json:"updatedAt"`
}

// Snapshot returns every reading grouped by metric kind, then sensor id.
func (m *Manager) Snapshot() map[string]map[string]ReadingStatus {
	out := make(map[string]map[string]ReadingStatus, len(Kinds))
	for _, kind := range Kinds {
		group := make(map[string]ReadingStatus, len(m.readings[kind]))
		for id, r := range m.readings[kind] {
			group[id] = ReadingStatus{Value: r.Value, Zone: r.Zone, UpdatedAt: r.UpdatedAt.UnixMilli()}
		}
		out[string(kind)] = group
	}
	return out
}

// Reading returns a single reading by kind and zone.
func (m *Manager) Reading(kind Kind, zone string) (Reading, bool) {
	r := m.readings[kind][prefixes[kind]+zone]
	if r == nil {
		return Reading{}, false
	}
	return *r, true
}
