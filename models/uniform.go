package models

import "github.com/banshee-data/amcl/pf"

// Uniform returns a sensor model that observes nothing: weights are
// left as they are and their total is reported. Useful as a filter
// heartbeat and in tests that need the sensor-update plumbing without
// an informative observation.
func Uniform() pf.SensorModel {
	return pf.SensorFunc(func(set *pf.SampleSet) float64 {
		return set.TotalWeight()
	})
}
