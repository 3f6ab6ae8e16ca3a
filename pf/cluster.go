package pf

import "math"

// computeClusterStats labels the histogram's occupied bins and rebuilds
// the per-cluster summaries from the live samples. Samples whose label
// exceeds the cluster capacity keep their weight but go unsummarized.
// Panics if a live sample is missing from the histogram; every code
// path that mutates poses reinserts them before calling this.
func (s *SampleSet) computeClusterStats() {
	s.Histogram.Cluster()

	s.ClusterCount = 0
	for i := range s.Clusters {
		s.Clusters[i] = Cluster{}
	}

	for i := 0; i < s.Count; i++ {
		sample := &s.Samples[i]

		c := s.Histogram.ClusterOf(sample.Pose)
		if c < 0 {
			panic("pf: live sample missing from histogram")
		}
		if c >= maxClusterCount {
			continue
		}
		if c+1 > s.ClusterCount {
			s.ClusterCount = c + 1
		}

		cluster := &s.Clusters[c]
		cluster.Count++
		cluster.Weight += sample.Weight

		cluster.m[0] += sample.Weight * sample.Pose.X
		cluster.m[1] += sample.Weight * sample.Pose.Y
		cluster.m[2] += sample.Weight * math.Cos(sample.Pose.Theta)
		cluster.m[3] += sample.Weight * math.Sin(sample.Pose.Theta)

		cluster.c[0][0] += sample.Weight * sample.Pose.X * sample.Pose.X
		cluster.c[0][1] += sample.Weight * sample.Pose.X * sample.Pose.Y
		cluster.c[1][0] += sample.Weight * sample.Pose.Y * sample.Pose.X
		cluster.c[1][1] += sample.Weight * sample.Pose.Y * sample.Pose.Y
	}

	for i := 0; i < s.ClusterCount; i++ {
		cluster := &s.Clusters[i]

		cluster.Mean.X = cluster.m[0] / cluster.Weight
		cluster.Mean.Y = cluster.m[1] / cluster.Weight
		cluster.Mean.Theta = math.Atan2(cluster.m[3], cluster.m[2])

		cluster.Cov = Mat{}
		cluster.Cov[0][0] = cluster.c[0][0]/cluster.Weight - cluster.Mean.X*cluster.Mean.X
		cluster.Cov[0][1] = cluster.c[0][1]/cluster.Weight - cluster.Mean.X*cluster.Mean.Y
		cluster.Cov[1][0] = cluster.c[1][0]/cluster.Weight - cluster.Mean.Y*cluster.Mean.X
		cluster.Cov[1][1] = cluster.c[1][1]/cluster.Weight - cluster.Mean.Y*cluster.Mean.Y

		// Circular variance of the heading. The angular cross terms
		// with x and y stay zero.
		r := math.Sqrt(cluster.m[2]*cluster.m[2] + cluster.m[3]*cluster.m[3])
		cluster.Cov[2][2] = -2 * math.Log(r)
	}
}

// Recluster rebuilds the set's histogram from its live samples and
// recomputes the cluster summaries. It serves populations assembled
// outside a Filter; sets managed by a Filter are reclustered on every
// resample already.
func (s *SampleSet) Recluster() {
	s.Histogram.Clear()
	for i := 0; i < s.Count; i++ {
		s.Histogram.Insert(s.Samples[i].Pose, s.Samples[i].Weight)
	}
	s.computeClusterStats()
}

// ClusterStats returns the summary of the labeled cluster. ok is false
// when the label is out of range for the current clustering.
func (s *SampleSet) ClusterStats(label int) (weight float64, mean Vec, cov Mat, ok bool) {
	if label < 0 || label >= s.ClusterCount {
		return 0, Vec{}, Mat{}, false
	}
	cluster := &s.Clusters[label]
	return cluster.Weight, cluster.Mean, cluster.Cov, true
}

// ClusterStats returns the summary of the labeled cluster in the
// active set.
func (f *Filter) ClusterStats(label int) (weight float64, mean Vec, cov Mat, ok bool) {
	return f.ActiveSet().ClusterStats(label)
}

// BestCluster returns the label of the heaviest cluster in the active
// set, or -1 when no clusters exist.
func (f *Filter) BestCluster() int {
	set := f.ActiveSet()
	best := -1
	bestWeight := 0.0
	for i := 0; i < set.ClusterCount; i++ {
		if set.Clusters[i].Weight > bestWeight {
			bestWeight = set.Clusters[i].Weight
			best = i
		}
	}
	return best
}

// CEPStats returns the weighted mean position of the active set and
// the scalar variance of the positions around it. The mean heading is
// reported as zero. Results are meaningful only while the population
// carries weight.
func (f *Filter) CEPStats() (mean Vec, variance float64) {
	set := f.ActiveSet()

	var mn, mx, my, mrr float64
	for i := 0; i < set.Count; i++ {
		sample := &set.Samples[i]
		mn += sample.Weight
		mx += sample.Weight * sample.Pose.X
		my += sample.Weight * sample.Pose.Y
		mrr += sample.Weight * sample.Pose.X * sample.Pose.X
		mrr += sample.Weight * sample.Pose.Y * sample.Pose.Y
	}

	mean.X = mx / mn
	mean.Y = my / mn
	variance = mrr/mn - (mx*mx/(mn*mn) + my*my/(mn*mn))
	return mean, variance
}
