package pf

// Histogram bins poses into discrete cells and groups occupied cells
// into connected clusters. Each SampleSet owns exactly one Histogram;
// handing the same instance to both sets of a Filter corrupts the
// resampling bookkeeping.
//
// The kdtree package provides the standard implementation.
type Histogram interface {
	// Clear empties the histogram.
	Clear()
	// Insert adds weight to the bin containing pose, creating the bin
	// if needed.
	Insert(pose Vec, weight float64)
	// Cluster labels each occupied bin with a connected-component id.
	// Labels are dense and start at zero.
	Cluster()
	// ClusterOf returns the cluster label of the bin containing pose,
	// or -1 if the bin is unoccupied.
	ClusterOf(pose Vec) int
	// Leaves returns the number of occupied bins.
	Leaves() int
}

// HistogramFactory builds a Histogram sized for roughly capacityHint
// inserted poses. A Filter calls it once per sample set.
type HistogramFactory func(capacityHint int) Histogram
