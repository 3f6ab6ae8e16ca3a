// Package occgrid provides the occupancy grid the filter localizes
// against: a fixed-size lattice of free/unknown/occupied cells with
// the centered-origin world transform, plus PGM+YAML persistence in
// the map_server convention.
package occgrid

import (
	"fmt"
	"math"

	"github.com/banshee-data/amcl/pf"
)

// Cell states, matching the pf.Map contract. The zero value is
// Unknown.
const (
	Free     = pf.OccFree
	Unknown  = pf.OccUnknown
	Occupied = pf.OccOccupied
)

// Grid is an occupancy grid. Cells are stored row-major with
// (0, 0) at the lower-left corner; world (0, 0) sits at the grid
// center. Grid satisfies pf.Map.
type Grid struct {
	sizeX, sizeY int
	scale        float64
	cells        []int8
}

// New returns a grid of sizeX by sizeY cells of the given edge length
// in meters, all Unknown.
func New(sizeX, sizeY int, scale float64) (*Grid, error) {
	if sizeX <= 0 || sizeY <= 0 {
		return nil, fmt.Errorf("occgrid: size %dx%d, want positive", sizeX, sizeY)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("occgrid: scale %g, want positive", scale)
	}
	return &Grid{
		sizeX: sizeX,
		sizeY: sizeY,
		scale: scale,
		cells: make([]int8, sizeX*sizeY),
	}, nil
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (sizeX, sizeY int) {
	return g.sizeX, g.sizeY
}

// Scale returns the cell edge length in meters.
func (g *Grid) Scale() float64 {
	return g.scale
}

// Valid reports whether (ix, iy) lies inside the grid.
func (g *Grid) Valid(ix, iy int) bool {
	return ix >= 0 && ix < g.sizeX && iy >= 0 && iy < g.sizeY
}

// OccState returns the occupancy state of (ix, iy).
func (g *Grid) OccState(ix, iy int) int8 {
	return g.cells[iy*g.sizeX+ix]
}

// SetOccState sets the occupancy state of (ix, iy). Out-of-bounds
// indices are ignored so builders can draw shapes that overhang the
// edge.
func (g *Grid) SetOccState(ix, iy int, state int8) {
	if !g.Valid(ix, iy) {
		return
	}
	g.cells[iy*g.sizeX+ix] = state
}

// WorldToGrid converts a world position to cell indices under the
// centered-origin convention. The result may be out of bounds.
func (g *Grid) WorldToGrid(x, y float64) (ix, iy int) {
	ix = g.sizeX/2 + int(math.Floor(x/g.scale+0.5))
	iy = g.sizeY/2 + int(math.Floor(y/g.scale+0.5))
	return ix, iy
}

// GridToWorld returns the world position of the center of cell
// (ix, iy).
func (g *Grid) GridToWorld(ix, iy int) (x, y float64) {
	x = float64(ix-g.sizeX/2) * g.scale
	y = float64(iy-g.sizeY/2) * g.scale
	return x, y
}

// FreeCells counts the cells marked Free.
func (g *Grid) FreeCells() int {
	n := 0
	for _, c := range g.cells {
		if c == Free {
			n++
		}
	}
	return n
}

// Fill sets every cell to state.
func (g *Grid) Fill(state int8) {
	for i := range g.cells {
		g.cells[i] = state
	}
}

// FillRect sets the half-open cell rectangle [x0, x1) x [y0, y1) to
// state, clipped to the grid.
func (g *Grid) FillRect(x0, y0, x1, y1 int, state int8) {
	for iy := y0; iy < y1; iy++ {
		for ix := x0; ix < x1; ix++ {
			g.SetOccState(ix, iy, state)
		}
	}
}

// FillBorder marks the outermost cell ring as state.
func (g *Grid) FillBorder(state int8) {
	g.FillRect(0, 0, g.sizeX, 1, state)
	g.FillRect(0, g.sizeY-1, g.sizeX, g.sizeY, state)
	g.FillRect(0, 0, 1, g.sizeY, state)
	g.FillRect(g.sizeX-1, 0, g.sizeX, g.sizeY, state)
}

// NewRoom builds the standard test environment: a free rectangular
// room enclosed by an occupied one-cell border.
func NewRoom(sizeX, sizeY int, scale float64) (*Grid, error) {
	g, err := New(sizeX, sizeY, scale)
	if err != nil {
		return nil, err
	}
	g.Fill(Free)
	g.FillBorder(Occupied)
	return g, nil
}
