package pf

import "errors"

var (
	// ErrEmptyDistribution reports a resample attempted over a
	// population whose total weight is zero.
	ErrEmptyDistribution = errors.New("pf: sample weights sum to zero")

	// ErrMapExhausted reports a free-space rejection sampler that hit
	// its attempt budget without landing on a free cell. The map has no
	// reachable free space, or the region being seeded lies outside it.
	ErrMapExhausted = errors.New("pf: no free map cell found within attempt budget")
)
