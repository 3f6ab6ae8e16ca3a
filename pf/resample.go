package pf

import (
	"math"

	"github.com/banshee-data/amcl/internal/monitoring"
)

// beginResample snapshots the active set's weights into the discrete
// sampler and drains the inactive set. The returned sets stay owned by
// the filter; on error the filter is untouched.
func (f *Filter) beginResample() (src, dst *SampleSet, pdf *discretePDF, err error) {
	src = f.ActiveSet()
	dst = f.inactiveSet()

	f.weightBuf = f.weightBuf[:0]
	for i := 0; i < src.Count; i++ {
		f.weightBuf = append(f.weightBuf, src.Samples[i].Weight)
	}
	pdf, err = newDiscretePDF(f.weightBuf, f.rng)
	if err != nil {
		return nil, nil, nil, err
	}

	dst.Count = 0
	dst.Histogram.Clear()
	return src, dst, pdf, nil
}

// resampleDraw importance-draws from src into dst until capLimit is
// reached or dst's occupied-bin count satisfies the KLD bound. Every
// drawn sample carries weight 1 and lands in dst's histogram as it is
// added.
func (f *Filter) resampleDraw(pdf *discretePDF, src, dst *SampleSet, capLimit int) {
	for dst.Count < capLimit {
		sa := &src.Samples[pdf.index()]
		if sa.Weight <= 0 {
			panic("pf: drew a sample with non-positive weight")
		}

		sb := &dst.Samples[dst.Count]
		dst.Count++
		sb.Pose = sa.Pose
		sb.Weight = 1
		dst.Histogram.Insert(sb.Pose, sb.Weight)

		if dst.Count > f.KLDLimit(dst.Histogram.Leaves()) {
			break
		}
	}
}

// finishResample normalizes the rebuilt population to uniform weights,
// refreshes its cluster statistics and makes it the active set.
func (f *Filter) finishResample(dst *SampleSet) {
	n := float64(dst.Count)
	for i := 0; i < dst.Count; i++ {
		dst.Samples[i].Weight /= n
	}
	dst.computeClusterStats()
	f.flip()
}

// appendSample adds a weight-1 sample to set and its histogram.
func appendSample(set *SampleSet, pose Vec) {
	s := &set.Samples[set.Count]
	set.Count++
	s.Pose = pose
	s.Weight = 1
	set.Histogram.Insert(pose, 1)
}

// Resample importance-resamples the active population into the
// inactive set, stopping at the KLD bound, then flips the sets.
// maxParticles caps the draw below the configured maximum; the active
// set is unchanged on error.
func (f *Filter) Resample(maxParticles int) error {
	src, dst, pdf, err := f.beginResample()
	if err != nil {
		return err
	}
	if maxParticles > f.maxSamples {
		maxParticles = f.maxSamples
	}
	f.resampleDraw(pdf, src, dst, maxParticles)
	f.finishResample(dst)
	return nil
}

// ResampleWithRandom resamples with n uniformly drawn free-space
// recovery samples mixed in: the KLD draw is capped at MaxSamples - n,
// then exactly n map-uniform poses with uniform headings are appended.
// Recovery draws that cannot find free space within the attempt budget
// return ErrMapExhausted with the active set unchanged.
func (f *Filter) ResampleWithRandom(n int, m Map) error {
	if n < 0 {
		n = 0
	}
	if n > f.maxSamples {
		n = f.maxSamples
	}

	src, dst, pdf, err := f.beginResample()
	if err != nil {
		return err
	}
	f.resampleDraw(pdf, src, dst, f.maxSamples-n)

	for i := 0; i < n; i++ {
		pose, err := f.drawFreePose(m, true)
		if err != nil {
			return err
		}
		appendSample(dst, pose)
	}

	f.finishResample(dst)
	return nil
}

// ResampleWithBackfill resamples with the KLD draw capped at
// MaxSamples - OverheadSamples and tops a thin result back up from the
// map: when the draw ends below MinSamples + 10, up to 100 free-space
// samples with uniform headings are appended, bounded by remaining
// capacity. Returns ErrMapExhausted, with the active set unchanged, if
// the map has no reachable free space.
func (f *Filter) ResampleWithBackfill(m Map) error {
	src, dst, pdf, err := f.beginResample()
	if err != nil {
		return err
	}
	f.resampleDraw(pdf, src, dst, f.maxSamples-f.overheadSamples)

	if dst.Count < f.minSamples+10 {
		monitoring.Logf("pf: resample population %d below min %d+10, backfilling from map", dst.Count, f.minSamples)
		for i := 0; i < 100 && dst.Count < f.maxSamples; i++ {
			pose, err := f.drawFreePose(m, true)
			if err != nil {
				return err
			}
			appendSample(dst, pose)
		}
	}

	f.finishResample(dst)
	return nil
}

// ResampleHypotheses resamples with externally supplied pose modes
// mixed in. The KLD draw is capped at MaxSamples - OverheadSamples;
// the leftover capacity, clamped by maxNew and split evenly across the
// hypotheses, is seeded around each hypothesis mean by the bivariate
// sampler with uniform headings. Each seed gets a single try; draws
// landing outside free space are skipped, so the mix-in may fall
// short of its budget.
func (f *Filter) ResampleHypotheses(m Map, hyps []Hypothesis, maxNew int) error {
	src, dst, pdf, err := f.beginResample()
	if err != nil {
		return err
	}
	f.resampleDraw(pdf, src, dst, f.maxSamples-f.overheadSamples)

	if len(hyps) > 0 {
		budget := f.maxSamples - dst.Count
		if maxNew < budget {
			budget = maxNew
		}
		perHyp := budget / len(hyps)
		for _, h := range hyps {
			for i := 0; i < perHyp; i++ {
				pose, ok := f.hypothesisPose(h, m, true)
				if !ok {
					continue
				}
				appendSample(dst, pose)
			}
		}
	}

	f.finishResample(dst)
	return nil
}

// ResampleHypothesesStaged is the two-stage hypothesis mix-in. The KLD
// draw keeps either the current population size or, when the set is
// nearly full, MaxSamples - OverheadSamples. Each hypothesis cloud is
// then grown in the drained source set: up to ten single-try seeds,
// expansion under the loose KLD bound, and finally a copy into the
// target with headings re-drawn uniformly. An expansion that stops
// accepting draws within the attempt budget returns ErrMapExhausted;
// because the source set doubles as scratch space, the population is
// indeterminate after that error and the filter must be re-initialized
// before further use.
func (f *Filter) ResampleHypothesesStaged(m Map, hyps []Hypothesis) error {
	src, dst, pdf, err := f.beginResample()
	if err != nil {
		return err
	}

	reqSamples := f.maxSamples - src.Count
	if reqSamples < f.overheadSamples {
		reqSamples = f.maxSamples - f.overheadSamples
	} else {
		reqSamples = src.Count
	}
	f.resampleDraw(pdf, src, dst, reqSamples)

	if len(hyps) > 0 {
		perHyp := (f.maxSamples - reqSamples) / len(hyps)
		seeds := perHyp
		if seeds > 10 {
			seeds = 10
		}

		for _, h := range hyps {
			// The source set is fully drawn from by now; recycle it as
			// scratch space for this hypothesis cloud.
			src.Count = 0
			src.Histogram.Clear()

			for i := 0; i < seeds; i++ {
				pose, ok := f.hypothesisPose(h, m, false)
				if !ok {
					continue
				}
				appendSample(src, pose)
			}

			tries := 0
			for src.Count < perHyp {
				if src.Count > f.looseLimit(src.Histogram.Leaves()) {
					break
				}
				if tries >= f.maxTries {
					return ErrMapExhausted
				}
				tries++
				pose, ok := f.hypothesisPose(h, m, false)
				if !ok {
					continue
				}
				appendSample(src, pose)
			}

			for i := 0; i < src.Count; i++ {
				pose := src.Samples[i].Pose
				pose.Theta = (f.rng.Float64() - 0.5) * 2 * math.Pi
				appendSample(dst, pose)
			}
		}
	}

	f.finishResample(dst)
	return nil
}

// hypothesisPose draws one candidate pose around a hypothesis mean
// using the component-wise covariance convention (see Hypothesis).
// The heading is uniform when uniformHeading is set and zero
// otherwise. ok is false when the draw landed outside free space.
func (f *Filter) hypothesisPose(h Hypothesis, m Map, uniformHeading bool) (pose Vec, ok bool) {
	sx := h.Cov[0][0]
	sy := h.Cov[1][1]
	rho := 0.0
	if sx != 0 && sy != 0 {
		rho = h.Cov[0][1] / (sx * sy)
	}
	dx, dy := f.sampleBivariate(sx, sy, rho)

	pose = Vec{X: h.Mean[0] + dx, Y: h.Mean[1] + dy}
	if uniformHeading {
		pose.Theta = (f.rng.Float64() - 0.5) * 2 * math.Pi
	}

	ix, iy := GridCoords(m, pose.X, pose.Y)
	if !m.Valid(ix, iy) || m.OccState(ix, iy) != OccFree {
		return Vec{}, false
	}
	return pose, true
}
