package models

import (
	"math"

	"github.com/banshee-data/amcl/pf"
)

// Beacon is a range anchor at a known world position.
type Beacon struct {
	X float64
	Y float64
}

// RangeBeacons weights samples against measured distances to fixed
// beacons, assuming independent Gaussian range noise. It is the
// beacon-network analogue of a range finder model: cheap, global and
// free of map ray casting.
type RangeBeacons struct {
	Beacons []Beacon
	// Sigma is the range noise standard deviation in meters.
	Sigma float64
}

// Distances returns the true distances from pose to every beacon, in
// beacon order. Simulations add their own measurement noise on top.
func (rb *RangeBeacons) Distances(pose pf.Vec) []float64 {
	out := make([]float64, len(rb.Beacons))
	for i, b := range rb.Beacons {
		out[i] = math.Hypot(b.X-pose.X, b.Y-pose.Y)
	}
	return out
}

// Reading returns the sensor model for one set of measured ranges,
// one per beacon. Each sample's weight is multiplied by the
// unnormalized Gaussian likelihood of the measurements at the
// sample's position; the constant normalization factor cancels when
// the filter renormalizes.
func (rb *RangeBeacons) Reading(ranges []float64) pf.SensorModel {
	if len(ranges) != len(rb.Beacons) {
		panic("models: range count does not match beacon count")
	}
	sigma := rb.Sigma
	if sigma <= 0 {
		sigma = 0.1
	}
	inv2s2 := 1 / (2 * sigma * sigma)

	return pf.SensorFunc(func(set *pf.SampleSet) float64 {
		total := 0.0
		for i := 0; i < set.Count; i++ {
			sample := &set.Samples[i]
			p := 1.0
			for j, b := range rb.Beacons {
				d := math.Hypot(b.X-sample.Pose.X, b.Y-sample.Pose.Y)
				diff := ranges[j] - d
				p *= math.Exp(-diff * diff * inv2s2)
			}
			sample.Weight *= p
			total += sample.Weight
		}
		return total
	})
}
