package grid

import "math"

// CellSize is the fixed grid resolution in floor length units.
const CellSize = 0.5

type Cell struct {
	Zone string
	X    int
	Y    int
}

// Grid is a fixed-resolution occupancy map. A cell is either empty or owned
// by exactly one object id.
type Grid struct {
	cells map[Cell]string
}

func New() *Grid {
	return &Grid{cells: make(map[Cell]string)}
}

// Footprint converts a rectangular placement to its covered cell range.
func Footprint(x, y, width, length float64) (x0, y0, nx, ny int) {
	x0 = int(math.Floor(x / CellSize))
	y0 = int(math.Floor(y / CellSize))
	nx = int(math.Ceil(width / CellSize))
	ny = int(math.Ceil(length / CellSize))
	return
}

// CanPlace reports whether every cell of the footprint is free.
func (g *Grid) CanPlace(zone string, x, y, width, length float64) bool {
	x0, y0, nx, ny := Footprint(x, y, width, length)
	for cx := x0; cx < x0+nx; cx++ {
		for cy := y0; cy < y0+ny; cy++ {
			if _, taken := g.cells[Cell{Zone: zone, X: cx, Y: cy}]; taken {
				return false
			}
		}
	}
	return true
}

// Place marks every cell of the footprint as owned by objectID.
// Callers must have checked CanPlace first.
func (g *Grid) Place(zone, objectID string, x, y, width, length float64) {
	x0, y0, nx, ny := Footprint(x, y, width, length)
	for cx := x0; cx < x0+nx; cx++ {
		for cy := y0; cy < y0+ny; cy++ {
			g.cells[Cell{Zone: zone, X: cx, Y: cy}] = objectID
		}
	}
}

// Owner returns the object id owning a cell, if any.
func (g *Grid) Owner(c Cell) (string, bool) {
	id, ok := g.cells[c]
	return id, ok
}

// OccupiedCells counts owned cells in a zone.
func (g *Grid) OccupiedCells(zone string) int {
	n := 0
	for c := range g.cells {
		if c.Zone == zone {
			n++
		}
	}
	return n
}
