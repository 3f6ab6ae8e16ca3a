package pf

// maxClusterCount caps the number of tracked clusters per set. Samples
// whose histogram bin lands in a later cluster still carry weight; they
// are simply not summarized.
const maxClusterCount = 100

// Sample is one pose hypothesis with an importance weight.
type Sample struct {
	Pose   Vec
	Weight float64
}

// Cluster summarizes one connected component of the pose histogram:
// total weight, weighted mean pose and weighted covariance. The angular
// variance in Cov[2][2] is the circular variance of the heading; the
// angular off-diagonals are left at zero.
type Cluster struct {
	Count  int
	Weight float64
	Mean   Vec
	Cov    Mat

	// Weighted accumulators: sums of w*x, w*y, w*cos(theta), w*sin(theta)
	// and the (x, y) second moments.
	m [4]float64
	c [2][2]float64
}

// SampleSet holds a fixed-capacity population of samples together with
// its pose histogram and the cluster summaries computed from it. Counts
// index into the backing slices; entries past Count are stale.
type SampleSet struct {
	Samples []Sample
	Count   int

	Histogram Histogram

	Clusters     []Cluster
	ClusterCount int
}

// NewSampleSet returns an empty set with the given capacity, bound to
// the given histogram. Sets built by a Filter are created this way; the
// constructor is exported so cluster statistics can be run on
// populations assembled outside a Filter.
func NewSampleSet(capacity int, h Histogram) *SampleSet {
	return &SampleSet{
		Samples:   make([]Sample, capacity),
		Histogram: h,
		Clusters:  make([]Cluster, maxClusterCount),
	}
}

// Live returns the live prefix of the backing sample slice. The slice
// aliases the set; writes through it mutate the set.
func (s *SampleSet) Live() []Sample {
	return s.Samples[:s.Count]
}

// TotalWeight sums the live sample weights.
func (s *SampleSet) TotalWeight() float64 {
	total := 0.0
	for i := 0; i < s.Count; i++ {
		total += s.Samples[i].Weight
	}
	return total
}
