package layout

import (
	"errors"
	"fmt"
	"time"

	"retailtwin.io/internal/sim/grid"
	"retailtwin.io/internal/sim/zones"
)

// Placement bounds and advisory thresholds.
const (
	MaxObjectWidth  = 10.0
	MaxObjectLength = 10.0
	MaxObjectHeight = 3.0

	MinAccessibleRatio = 0.30
	MaxOccupancyRatio  = 0.70
)

var (
	ErrUnknownZone       = errors.New("unknown zone")
	ErrInvalidDimensions = errors.New("invalid object dimensions")
	ErrCollision         = errors.New("object collides with existing placement")
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Object is immutable once placed: no move, resize or remove exists.
type Object struct {
	ID       string   `json:"id"`
	Zone     string   `json:"zone"`
	Width    float64  `json:"width"`
	Length   float64  `json:"length"`
	Height   float64  `json:"height"`
	Position Position `json:"position"`
}

func (o Object) Area() float64 { return o.Width * o.Length }

type ObjectSpec struct {
	Width    float64
	Length   float64
	Height   float64
	Position Position
}

type Exit struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Width    float64  `json:"width"`
}

// Domain validates placements against the collision grid and analyses
// per-zone density and evacuation accessibility.
type Domain struct {
	zones   *zones.Registry
	grid    *grid.Grid
	objects map[string]*Object
	order   []string
	perZone map[string][]string

	now     func() time.Time
	nextNum uint64
}

func New(reg *zones.Registry, now func() time.Time) *Domain {
	return &Domain{
		zones:   reg,
		grid:    grid.New(),
		objects: make(map[string]*Object),
		perZone: make(map[string][]string),
		now:     now,
	}
}

// AddObject validates dimensions and collisions, then commits the placement:
// object registered, zone occupied-area increased, grid cells marked. A
// rejected placement leaves all state unchanged.
func (d *Domain) AddObject(zoneID string, spec ObjectSpec) (Object, Event, error) {
	zone, ok := d.zones.Get(zoneID)
	if !ok {
		return Object{}, nil, fmt.Errorf("%w: %s", ErrUnknownZone, zoneID)
	}
	if !validDimensions(spec) {
		return Object{}, nil, ErrInvalidDimensions
	}
	if !d.grid.CanPlace(zoneID, spec.Position.X, spec.Position.Y, spec.Width, spec.Length) {
		return Object{}, nil, ErrCollision
	}

	d.nextNum++
	obj := &Object{
		ID:       fmt.Sprintf("obj_%06d", d.nextNum),
		Zone:     zoneID,
		Width:    spec.Width,
		Length:   spec.Length,
		Height:   spec.Height,
		Position: spec.Position,
	}
	d.objects[obj.ID] = obj
	d.order = append(d.order, obj.ID)
	d.perZone[zoneID] = append(d.perZone[zoneID], obj.ID)
	zone.OccupiedArea += obj.Area()
	zone.LastModified = d.now()
	d.grid.Place(zoneID, obj.ID, spec.Position.X, spec.Position.Y, spec.Width, spec.Length)

	return *obj, ObjectAdded{ZoneID: zoneID, ObjectID: obj.ID, Object: *obj}, nil
}

func validDimensions(spec ObjectSpec) bool {
	return spec.Width > 0 && spec.Length > 0 && spec.Height > 0 &&
		spec.Width <= MaxObjectWidth &&
		spec.Length <= MaxObjectLength &&
		spec.Height <= MaxObjectHeight
}

type Validation struct {
	HasValidRoutes  bool    `json:"hasValidRoutes"`
	AccessibleRatio float64 `json:"accessibleRatio"`
	Exits           []Exit  `json:"exits"`
}

// ValidateEvacuationRoutes passes when the zone has at least one exit and at
// least MinAccessibleRatio of its area is unoccupied.
func (d *Domain) ValidateEvacuationRoutes(zoneID string) (Validation, bool) {
	zone, ok := d.zones.Get(zoneID)
	if !ok {
		return Validation{}, false
	}
	exits := d.exits(zoneID)
	ratio := (zone.TotalArea() - zone.OccupiedArea) / zone.TotalArea()
	return Validation{
		HasValidRoutes:  len(exits) > 0 && ratio >= MinAccessibleRatio,
		AccessibleRatio: ratio,
		Exits:           exits,
	}, true
}

// exits returns the zone's static exit fixtures.
func (d *Domain) exits(zoneID string) []Exit {
	return []Exit{{
		ID:       fmt.Sprintf("exit_%s_1", zoneID),
		Position: Position{X: 0, Y: 0},
		Width:    1.5,
	}}
}

type Metrics struct {
	OccupiedSpace    float64    `json:"occupiedSpace"`
	AccessibleArea   float64    `json:"accessibleArea"`
	EvacuationRoutes Validation `json:"evacuationRoutes"`
}

type Suggestion struct {
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	CurrentValue   float64 `json:"currentValue"`
	RecommendedMax float64 `json:"recommendedMax,omitempty"`
	RecommendedMin float64 `json:"recommendedMin,omitempty"`
}

type Optimization struct {
	Metrics     Metrics      `json:"metrics"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Optimize reports current occupancy and evacuation metrics with advisory
// findings. It never mutates state.
func (d *Domain) Optimize(zoneID string) (Optimization, bool) {
	zone, ok := d.zones.Get(zoneID)
	if !ok {
		return Optimization{}, false
	}
	validation, _ := d.ValidateEvacuationRoutes(zoneID)
	opt := Optimization{
		Metrics: Metrics{
			OccupiedSpace:    zone.OccupiedArea,
			AccessibleArea:   zone.TotalArea() - zone.OccupiedArea,
			EvacuationRoutes: validation,
		},
		Suggestions: []Suggestion{},
	}

	occupancy := zone.OccupiedArea / zone.TotalArea()
	if occupancy > MaxOccupancyRatio {
		opt.Suggestions = append(opt.Suggestions, Suggestion{
			Type:           "density_warning",
			Message:        "occupancy density is too high",
			CurrentValue:   occupancy,
			RecommendedMax: MaxOccupancyRatio,
		})
	}
	if !validation.HasValidRoutes {
		opt.Suggestions = append(opt.Suggestions, Suggestion{
			Type:           "evacuation_warning",
			Message:        "evacuation routes are not adequate",
			CurrentValue:   validation.AccessibleRatio,
			RecommendedMin: MinAccessibleRatio,
		})
	}
	return opt, true
}

func (d *Domain) Object(id string) (Object, bool) {
	o := d.objects[id]
	if o == nil {
		return Object{}, false
	}
	return *o, true
}

// ZoneObjects returns the ids placed in a zone, in placement order.
func (d *Domain) ZoneObjects(zoneID string) []string {
	return append([]string(nil), d.perZone[zoneID]...)
}

// Grid exposes the collision grid for read-only inspection.
func (d *Domain) Grid() *grid.Grid { return d.grid }
