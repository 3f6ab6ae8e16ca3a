package pf

import "math"

// KLDLimit returns the KLD-sampling population bound for k occupied
// histogram bins, clamped to [MinSamples, MaxSamples]. With one bin or
// none there is nothing to bound and the floor applies.
//
// The bound is the Fox et al. chi-square quantile approximation:
// n = (k-1)/(2*eps) * (1 - 2/(9(k-1)) + sqrt(2/(9(k-1)))*z)^3.
func (f *Filter) KLDLimit(k int) int {
	n := kldBound(k, f.popErr, f.popZ)
	if n < f.minSamples {
		return f.minSamples
	}
	if n >= f.maxSamples {
		return f.maxSamples
	}
	return n
}

// KLDLimitFor is KLDLimit with explicit KLD parameters, keeping the
// configured clamp. Callers use it to probe alternative error bounds
// without rebuilding the filter.
func (f *Filter) KLDLimitFor(k int, eps, z float64) int {
	n := kldBound(k, eps, z)
	if n < f.minSamples {
		return f.minSamples
	}
	if n >= f.maxSamples {
		return f.maxSamples
	}
	return n
}

// looseLimit is the low-confidence bound used while growing
// per-hypothesis populations: ten times the population error and no
// clamping, so small clouds stop early. k <= 1 returns -1, which any
// population clears immediately.
func (f *Filter) looseLimit(k int) int {
	if k <= 1 {
		return -1
	}
	return kldBound(k, 5*f.popErr, f.popZ)
}

func kldBound(k int, eps, z float64) int {
	if k <= 1 {
		return 0
	}
	kk := float64(k - 1)
	b := 2 / (9 * kk)
	x := 1 - b + math.Sqrt(b)*z
	return int(math.Ceil(kk / (2 * eps) * x * x * x))
}
