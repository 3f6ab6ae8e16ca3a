package occgrid

import (
	"testing"

	"github.com/banshee-data/amcl/pf"
)

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name         string
		sizeX, sizeY int
		scale        float64
	}{
		{"zero width", 0, 5, 0.1},
		{"zero height", 5, 0, 0.1},
		{"zero scale", 5, 5, 0},
		{"negative scale", 5, 5, -0.1},
	}
	for _, tc := range cases {
		if _, err := New(tc.sizeX, tc.sizeY, tc.scale); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}

func TestNew_StartsUnknown(t *testing.T) {
	g, err := New(4, 3, 0.5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for iy := 0; iy < 3; iy++ {
		for ix := 0; ix < 4; ix++ {
			if got := g.OccState(ix, iy); got != Unknown {
				t.Fatalf("cell (%d, %d): expected Unknown, got %d", ix, iy, got)
			}
		}
	}
}

func TestGrid_SetOccState(t *testing.T) {
	g, err := New(4, 4, 0.5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	g.SetOccState(1, 2, Occupied)
	if got := g.OccState(1, 2); got != Occupied {
		t.Errorf("expected Occupied, got %d", got)
	}

	// Out-of-bounds writes are ignored, not panics.
	g.SetOccState(-1, 0, Occupied)
	g.SetOccState(0, -1, Occupied)
	g.SetOccState(4, 0, Occupied)
	g.SetOccState(0, 4, Occupied)
}

func TestGrid_WorldGridRoundTrip(t *testing.T) {
	g, err := New(21, 15, 0.05)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if ix, iy := g.WorldToGrid(0, 0); ix != 10 || iy != 7 {
		t.Errorf("expected world origin at the grid center (10, 7), got (%d, %d)", ix, iy)
	}

	for iy := 0; iy < 15; iy++ {
		for ix := 0; ix < 21; ix++ {
			x, y := g.GridToWorld(ix, iy)
			gx, gy := g.WorldToGrid(x, y)
			if gx != ix || gy != iy {
				t.Fatalf("cell (%d, %d) round-trips to (%d, %d)", ix, iy, gx, gy)
			}
		}
	}
}

func TestGrid_MatchesFilterCoords(t *testing.T) {
	g, err := New(21, 15, 0.05)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	points := [][2]float64{{0, 0}, {0.3, -0.2}, {-0.49, 0.11}, {0.024, -0.026}}
	for _, p := range points {
		gx, gy := g.WorldToGrid(p[0], p[1])
		fx, fy := pf.GridCoords(g, p[0], p[1])
		if gx != fx || gy != fy {
			t.Errorf("point (%g, %g): grid (%d, %d) vs filter (%d, %d)",
				p[0], p[1], gx, gy, fx, fy)
		}
	}
}

func TestNewRoom(t *testing.T) {
	g, err := NewRoom(10, 8, 0.1)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}

	if got, want := g.FreeCells(), 8*6; got != want {
		t.Errorf("expected %d free cells, got %d", want, got)
	}
	for ix := 0; ix < 10; ix++ {
		if got := g.OccState(ix, 0); got != Occupied {
			t.Fatalf("bottom border cell %d: expected Occupied, got %d", ix, got)
		}
		if got := g.OccState(ix, 7); got != Occupied {
			t.Fatalf("top border cell %d: expected Occupied, got %d", ix, got)
		}
	}
	if got := g.OccState(4, 3); got != Free {
		t.Errorf("interior cell: expected Free, got %d", got)
	}
}

func TestFillRect_Clips(t *testing.T) {
	g, err := New(4, 4, 0.5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	g.FillRect(-2, -2, 2, 2, Occupied)

	occupied := 0
	for iy := 0; iy < 4; iy++ {
		for ix := 0; ix < 4; ix++ {
			if g.OccState(ix, iy) == Occupied {
				occupied++
			}
		}
	}
	if occupied != 4 {
		t.Errorf("expected 4 occupied cells after clipping, got %d", occupied)
	}
	if got := g.OccState(2, 2); got != Unknown {
		t.Errorf("expected (2, 2) outside the half-open rect, got %d", got)
	}
}
