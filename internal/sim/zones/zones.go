package zones

import "time"

// Zone is a named region of the floor with fixed dimensions.
// OccupiedArea grows as the layout domain accepts placements.
type Zone struct {
	ID           string
	Width        float64
	Length       float64
	Height       float64
	OccupiedArea float64
	LastModified time.Time
}

func (z *Zone) TotalArea() float64 { return z.Width * z.Length }

type Spec struct {
	ID     string
	Width  float64
	Length float64
	Height float64
}

// Registry is the canonical zone set, created once at startup.
// Zones are never deleted at runtime.
type Registry struct {
	order []string
	byID  map[string]*Zone
}

func NewRegistry(specs []Spec, now time.Time) *Registry {
	r := &Registry{byID: make(map[string]*Zone, len(specs))}
	for _, s := range specs {
		if _, dup := r.byID[s.ID]; dup {
			continue
		}
		r.order = append(r.order, s.ID)
		r.byID[s.ID] = &Zone{
			ID:           s.ID,
			Width:        s.Width,
			Length:       s.Length,
			Height:       s.Height,
			LastModified: now,
		}
	}
	return r
}

func (r *Registry) Get(id string) (*Zone, bool) {
	z, ok := r.byID[id]
	return z, ok
}

// IDs returns zone ids in declaration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Status is the wire view of a zone.
type Status struct {
	ID            string     `json:"id"`
	Dimensions    Dimensions `json:"dimensions"`
	OccupiedSpace float64    `json:"occupiedSpace"`
	LastModified  int64      `json:"lastModified"` // unix millis
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Height float64 `json:"height"`
}

func (r *Registry) Snapshot() map[string]Status {
	out := make(map[string]Status, len(r.order))
	for _, id := range r.order {
		z := r.byID[id]
		out[id] = Status{
			ID: z.ID,
			Dimensions: Dimensions{
				Width:  z.Width,
				Length: z.Length,
				Height: z.Height,
			},
			OccupiedSpace: z.OccupiedArea,
			LastModified:  z.LastModified.UnixMilli(),
		}
	}
	return out
}
