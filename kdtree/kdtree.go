// Package kdtree implements the pose histogram behind adaptive
// resampling: a three-dimensional kd-tree over discretized
// (x, y, theta) bins, with connected-component labeling across the
// 3x3x3 bin neighborhood. It satisfies the pf.Histogram interface.
package kdtree

import (
	"math"

	"github.com/banshee-data/amcl/pf"
)

// Bin edge lengths: 50 cm in x and y, 10 degrees in heading.
const (
	binSizeXY    = 0.5
	binSizeTheta = 10 * math.Pi / 180
)

type node struct {
	leaf       bool
	key        [3]int
	value      float64
	pivotDim   int
	pivotValue float64
	cluster    int
	children   [2]*node
}

// Tree is a kd-tree histogram backed by a preallocated node pool.
// Inserts beyond the pool spill to the heap, so the capacity hint is a
// performance knob, not a limit. The zero value is unusable; call New.
type Tree struct {
	sizes     [3]float64
	root      *node
	pool      []node
	used      int
	leafCount int
}

// New returns an empty tree with pool capacity for capacityHint nodes.
// A population of n samples needs at most 2n-1 nodes.
func New(capacityHint int) *Tree {
	if capacityHint < 1 {
		capacityHint = 1
	}
	return &Tree{
		sizes: [3]float64{binSizeXY, binSizeXY, binSizeTheta},
		pool:  make([]node, capacityHint),
	}
}

// Clear empties the tree. Pool nodes are recycled in place.
func (t *Tree) Clear() {
	t.root = nil
	t.used = 0
	t.leafCount = 0
}

// Leaves returns the number of occupied bins.
func (t *Tree) Leaves() int {
	return t.leafCount
}

// Insert adds value to the bin containing pose, creating the bin if
// needed.
func (t *Tree) Insert(pose pf.Vec, value float64) {
	t.root = t.insertNode(t.root, t.binKey(pose), value)
}

// ClusterOf returns the cluster label assigned to the bin containing
// pose by the last Cluster call, or -1 when the bin is unoccupied.
func (t *Tree) ClusterOf(pose pf.Vec) int {
	n := t.findNode(t.root, t.binKey(pose))
	if n == nil {
		return -1
	}
	return n.cluster
}

// Cluster labels every occupied bin with a connected-component id.
// Bins sharing a face, edge or corner in the discretized
// (x, y, theta) lattice join the same component. Labels are dense and
// start at zero.
func (t *Tree) Cluster() {
	queue := make([]*node, 0, t.leafCount)
	queue = collectLeaves(t.root, queue)

	count := 0
	for i := len(queue) - 1; i >= 0; i-- {
		n := queue[i]
		if n.cluster >= 0 {
			continue
		}
		n.cluster = count
		count++
		t.labelNeighbors(n)
	}
}

func (t *Tree) binKey(pose pf.Vec) [3]int {
	return [3]int{
		int(math.Floor(pose.X / t.sizes[0])),
		int(math.Floor(pose.Y / t.sizes[1])),
		int(math.Floor(pose.Theta / t.sizes[2])),
	}
}

func (t *Tree) alloc() *node {
	if t.used < len(t.pool) {
		n := &t.pool[t.used]
		t.used++
		*n = node{}
		return n
	}
	return &node{}
}

func (t *Tree) insertNode(n *node, key [3]int, value float64) *node {
	if n == nil {
		n = t.alloc()
		n.leaf = true
		n.key = key
		n.value = value
		t.leafCount++
		return n
	}

	if n.leaf {
		if n.key == key {
			n.value += value
			return n
		}

		// Split on the dimension where the keys are furthest apart,
		// at the midpoint between them.
		maxSplit := 0
		n.pivotDim = -1
		for i := 0; i < 3; i++ {
			split := key[i] - n.key[i]
			if split < 0 {
				split = -split
			}
			if split > maxSplit {
				maxSplit = split
				n.pivotDim = i
			}
		}
		n.pivotValue = float64(key[n.pivotDim]+n.key[n.pivotDim]) / 2

		if float64(key[n.pivotDim]) < n.pivotValue {
			n.children[0] = t.insertNode(nil, key, value)
			n.children[1] = t.insertNode(nil, n.key, n.value)
		} else {
			n.children[0] = t.insertNode(nil, n.key, n.value)
			n.children[1] = t.insertNode(nil, key, value)
		}
		n.leaf = false
		t.leafCount--
		return n
	}

	if float64(key[n.pivotDim]) < n.pivotValue {
		n.children[0] = t.insertNode(n.children[0], key, value)
	} else {
		n.children[1] = t.insertNode(n.children[1], key, value)
	}
	return n
}

func (t *Tree) findNode(n *node, key [3]int) *node {
	if n == nil {
		return nil
	}
	if n.leaf {
		if n.key == key {
			return n
		}
		return nil
	}
	if float64(key[n.pivotDim]) < n.pivotValue {
		return t.findNode(n.children[0], key)
	}
	return t.findNode(n.children[1], key)
}

// collectLeaves gathers the occupied bins and resets their labels.
func collectLeaves(n *node, queue []*node) []*node {
	if n == nil {
		return queue
	}
	if n.leaf {
		n.cluster = -1
		return append(queue, n)
	}
	queue = collectLeaves(n.children[0], queue)
	return collectLeaves(n.children[1], queue)
}

// labelNeighbors floods n's label through the 3x3x3 neighborhood of
// its bin.
func (t *Tree) labelNeighbors(n *node) {
	for i := 0; i < 27; i++ {
		key := [3]int{
			n.key[0] + i/9 - 1,
			n.key[1] + (i/3)%3 - 1,
			n.key[2] + i%3 - 1,
		}
		nn := t.findNode(t.root, key)
		if nn == nil || nn.cluster >= 0 {
			continue
		}
		nn.cluster = n.cluster
		t.labelNeighbors(nn)
	}
}
