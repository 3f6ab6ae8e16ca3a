package kdtree

import (
	"testing"

	"github.com/banshee-data/amcl/pf"
)

func TestTree_Leaves(t *testing.T) {
	tr := New(16)
	if got := tr.Leaves(); got != 0 {
		t.Fatalf("expected 0 leaves in an empty tree, got %d", got)
	}

	tr.Insert(pf.Vec{X: 0.1, Y: 0.1}, 1)
	if got := tr.Leaves(); got != 1 {
		t.Fatalf("expected 1 leaf, got %d", got)
	}

	// Same 0.5 m x 0.5 m x 10 degree bin: the value accumulates, no new
	// leaf appears.
	tr.Insert(pf.Vec{X: 0.4, Y: 0.4, Theta: 0.1}, 1)
	if got := tr.Leaves(); got != 1 {
		t.Fatalf("expected same-bin insert to keep 1 leaf, got %d", got)
	}

	tr.Insert(pf.Vec{X: 0.6}, 1)
	if got := tr.Leaves(); got != 2 {
		t.Fatalf("expected 2 leaves, got %d", got)
	}

	// Negative coordinates bin with floor semantics, so -0.1 is a
	// different bin from +0.1.
	tr.Insert(pf.Vec{X: -0.1}, 1)
	if got := tr.Leaves(); got != 3 {
		t.Fatalf("expected 3 leaves, got %d", got)
	}
}

func TestTree_ClusterAdjacency(t *testing.T) {
	tr := New(16)
	a := pf.Vec{X: 0.1, Y: 0.1}
	b := pf.Vec{X: 0.6, Y: 0.1} // x bin adjacent to a
	c := pf.Vec{X: 1.6, Y: 0.1} // two x bins away from b
	tr.Insert(a, 1)
	tr.Insert(b, 1)
	tr.Insert(c, 1)

	tr.Cluster()

	la, lb, lc := tr.ClusterOf(a), tr.ClusterOf(b), tr.ClusterOf(c)
	if la < 0 || lb < 0 || lc < 0 {
		t.Fatalf("expected labels for all occupied bins, got %d %d %d", la, lb, lc)
	}
	if la != lb {
		t.Errorf("expected adjacent bins to share a label, got %d and %d", la, lb)
	}
	if lc == la {
		t.Errorf("expected the distant bin in its own cluster, got %d for both", lc)
	}
	// Labels are dense from zero.
	if la > 1 || lc > 1 {
		t.Errorf("expected dense labels 0 and 1, got %d and %d", la, lc)
	}
}

func TestTree_ClusterDiagonalAdjacency(t *testing.T) {
	tr := New(16)
	a := pf.Vec{X: 0.1, Y: 0.1, Theta: 0.05}
	b := pf.Vec{X: 0.6, Y: 0.6, Theta: 0.2} // +1 in all three bin axes
	tr.Insert(a, 1)
	tr.Insert(b, 1)

	tr.Cluster()

	if la, lb := tr.ClusterOf(a), tr.ClusterOf(b); la != lb {
		t.Errorf("expected corner-adjacent bins to share a label, got %d and %d", la, lb)
	}
}

func TestTree_ClusterHeadingSeparation(t *testing.T) {
	tr := New(16)
	a := pf.Vec{}
	b := pf.Vec{Theta: 3.0} // seventeen heading bins away
	tr.Insert(a, 1)
	tr.Insert(b, 1)

	tr.Cluster()

	if la, lb := tr.ClusterOf(a), tr.ClusterOf(b); la == lb {
		t.Errorf("expected far headings in separate clusters, got %d for both", la)
	}
}

func TestTree_ClusterOfUnknown(t *testing.T) {
	tr := New(16)
	tr.Insert(pf.Vec{X: 0.1}, 1)
	tr.Cluster()

	if got := tr.ClusterOf(pf.Vec{X: 5}); got != -1 {
		t.Errorf("expected -1 for an unoccupied bin, got %d", got)
	}
}

func TestTree_Clear(t *testing.T) {
	tr := New(8)
	tr.Insert(pf.Vec{X: 0.1}, 1)
	tr.Insert(pf.Vec{X: 0.6}, 1)
	tr.Cluster()

	tr.Clear()
	if got := tr.Leaves(); got != 0 {
		t.Fatalf("expected 0 leaves after clear, got %d", got)
	}
	if got := tr.ClusterOf(pf.Vec{X: 0.1}); got != -1 {
		t.Fatalf("expected -1 after clear, got %d", got)
	}

	// The pool is recycled in place; the tree stays usable.
	tr.Insert(pf.Vec{X: 0.1}, 1)
	if got := tr.Leaves(); got != 1 {
		t.Fatalf("expected 1 leaf after reuse, got %d", got)
	}
}

func TestTree_PoolSpill(t *testing.T) {
	// A pool hint far below the insert count forces heap spill; the
	// tree must behave identically.
	tr := New(2)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			tr.Insert(pf.Vec{X: float64(i) * 0.5, Y: float64(j) * 0.5}, 1)
		}
	}
	if got := tr.Leaves(); got != 25 {
		t.Fatalf("expected 25 leaves, got %d", got)
	}

	tr.Cluster()
	// Half-meter spacing makes every bin adjacent to its grid
	// neighbors: one connected component.
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if got := tr.ClusterOf(pf.Vec{X: float64(i) * 0.5, Y: float64(j) * 0.5}); got != 0 {
				t.Fatalf("bin (%d, %d): expected label 0, got %d", i, j, got)
			}
		}
	}
}

func TestTree_WeightedInsertKeepsOneLeafPerBin(t *testing.T) {
	tr := New(8)
	pose := pf.Vec{X: 0.2, Y: 0.3}
	tr.Insert(pose, 0.25)
	tr.Insert(pose, 0.5)
	tr.Insert(pf.Vec{X: 0.21, Y: 0.31}, 0.25)

	if got := tr.Leaves(); got != 1 {
		t.Fatalf("expected 1 leaf, got %d", got)
	}
}
