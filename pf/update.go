package pf

import "github.com/banshee-data/amcl/internal/monitoring"

// UpdateMotion advances every live sample of the active set through
// the motion model in place. Weights, histogram and cluster statistics
// are left alone; resampling rebuilds them anyway.
func (f *Filter) UpdateMotion(model MotionModel) {
	model.Apply(f.ActiveSet())
}

// UpdateMotionClustered advances the active set through the motion
// model and then rebuilds its histogram and cluster statistics, so
// pose queries between a motion step and the next resample see
// post-motion clusters.
func (f *Filter) UpdateMotionClustered(model MotionModel) {
	set := f.ActiveSet()
	set.Histogram.Clear()

	model.Apply(set)

	for i := 0; i < set.Count; i++ {
		set.Histogram.Insert(set.Samples[i].Pose, set.Samples[i].Weight)
	}
	set.computeClusterStats()
}

// UpdateSensor reweights the active set against the current
// observation and normalizes the weights to unit total. A model that
// rules out the whole population (zero or negative total) resets the
// weights to uniform instead of leaving them unusable. Returns the sum
// of squared normalized weights, the reciprocal of the effective
// sample size.
func (f *Filter) UpdateSensor(model SensorModel) float64 {
	set := f.ActiveSet()
	total := model.Weigh(set)

	squareSum := 0.0
	if total > 0 {
		for i := 0; i < set.Count; i++ {
			sample := &set.Samples[i]
			sample.Weight /= total
			squareSum += sample.Weight * sample.Weight
		}
	} else {
		monitoring.Logf("pf: sensor model gave the population zero probability, resetting %d samples to uniform weight", set.Count)
		w := 1.0 / float64(set.Count)
		for i := 0; i < set.Count; i++ {
			set.Samples[i].Weight = w
			squareSum += w * w
		}
	}

	f.sumSquareWeights = squareSum
	return squareSum
}
