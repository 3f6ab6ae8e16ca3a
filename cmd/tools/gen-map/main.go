// Command gen-map generates a synthetic occupancy map: a walled room
// with randomly placed rectangular obstacles, saved as YAML metadata
// plus a PGM image.
package main

import (
	"flag"
	"log"
	rand "math/rand/v2"

	"github.com/banshee-data/amcl/occgrid"
)

func main() {
	output := flag.String("o", "map.yaml", "output YAML path (PGM written alongside)")
	size := flag.Float64("size", 20.0, "room side length in meters")
	resolution := flag.Float64("resolution", 0.05, "cell size in meters")
	obstacles := flag.Int("obstacles", 6, "number of rectangular obstacles")
	obstacleMax := flag.Float64("obstacle-max", 2.0, "maximum obstacle side in meters")
	seed := flag.Uint64("seed", 1, "obstacle placement seed")
	flag.Parse()

	cells := int(*size / *resolution)
	grid, err := occgrid.NewRoom(cells, cells, *resolution)
	if err != nil {
		log.Fatalf("Failed to create room: %v", err)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	maxCells := int(*obstacleMax / *resolution)
	if maxCells < 2 {
		maxCells = 2
	}
	for i := 0; i < *obstacles; i++ {
		w := 2 + rng.IntN(maxCells-1)
		h := 2 + rng.IntN(maxCells-1)
		// Keep a one-cell margin inside the border walls.
		x0 := 1 + rng.IntN(cells-w-2)
		y0 := 1 + rng.IntN(cells-h-2)
		grid.FillRect(x0, y0, x0+w, y0+h, occgrid.Occupied)
	}

	if err := grid.Save(*output); err != nil {
		log.Fatalf("Failed to save map: %v", err)
	}
	log.Printf("✓ Created: %s (%dx%d cells, %d free)", *output, cells, cells, grid.FreeCells())
}
