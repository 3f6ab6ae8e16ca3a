package pf

import "math"

// Occupancy states reported by Map.OccState. The zero value is
// "unknown" so an unset cell is never treated as free.
const (
	OccFree     int8 = -1
	OccUnknown  int8 = 0
	OccOccupied int8 = 1
)

// Map is the occupancy-grid view the filter needs: grid dimensions in
// cells, the cell edge length in meters, bounds checking and the
// occupancy state of a cell. The occgrid package provides the standard
// implementation.
//
// World coordinates are centered: world (0, 0) sits at the middle of
// the grid, cell (0, 0) at its lower-left corner.
type Map interface {
	// Size returns the grid dimensions in cells.
	Size() (sizeX, sizeY int)
	// Scale returns the cell edge length in meters.
	Scale() float64
	// Valid reports whether (ix, iy) lies inside the grid.
	Valid(ix, iy int) bool
	// OccState returns the occupancy state of (ix, iy). Callers must
	// only pass valid indices.
	OccState(ix, iy int) int8
}

// GridCoords converts a world position to grid cell indices under the
// centered-origin convention: cells are addressed from the grid center
// with round-to-nearest. The result may lie outside the grid; check
// with m.Valid.
func GridCoords(m Map, x, y float64) (ix, iy int) {
	sizeX, sizeY := m.Size()
	scale := m.Scale()
	ix = sizeX/2 + int(math.Floor(x/scale+0.5))
	iy = sizeY/2 + int(math.Floor(y/scale+0.5))
	return ix, iy
}
