package pf

import "math"

// resetActive empties the active set's histogram and restores the full
// population at uniform weight, handing each slot to fill to place a
// pose. fill also inserts the pose into the histogram.
func (f *Filter) resetActive(fill func(i int) error) error {
	set := f.ActiveSet()
	set.Histogram.Clear()
	set.Count = f.maxSamples

	w := 1.0 / float64(f.maxSamples)
	for i := 0; i < set.Count; i++ {
		set.Samples[i].Weight = w
		if err := fill(i); err != nil {
			return err
		}
	}

	set.computeClusterStats()
	return nil
}

// InitGaussian seeds the active set with MaxSamples poses drawn from a
// Gaussian around mean. Degenerate covariances are tolerated; see
// newGaussianPDF.
func (f *Filter) InitGaussian(mean Vec, cov Mat) {
	set := f.ActiveSet()
	pdf := newGaussianPDF(mean, cov, f.rng)
	// Cannot fail: the Gaussian sampler always produces a pose.
	_ = f.resetActive(func(i int) error {
		pose := pdf.sample()
		set.Samples[i].Pose = pose
		set.Histogram.Insert(pose, set.Samples[i].Weight)
		return nil
	})
}

// InitUniform seeds the active set with MaxSamples poses drawn
// uniformly over the map's free cells, all heading zero. Returns
// ErrMapExhausted if no free cell turns up within the attempt budget.
func (f *Filter) InitUniform(m Map) error {
	set := f.ActiveSet()
	return f.resetActive(func(i int) error {
		pose, err := f.drawFreePose(m, false)
		if err != nil {
			return err
		}
		set.Samples[i].Pose = pose
		set.Histogram.Insert(pose, set.Samples[i].Weight)
		return nil
	})
}

// InitModel seeds the active set with MaxSamples poses supplied by
// gen, one call per sample.
func (f *Filter) InitModel(gen PoseGenerator) {
	set := f.ActiveSet()
	_ = f.resetActive(func(i int) error {
		pose := gen.Generate()
		set.Samples[i].Pose = pose
		set.Histogram.Insert(pose, set.Samples[i].Weight)
		return nil
	})
}

// InitPoint seeds the active set with MaxSamples poses drawn uniformly
// from the axis-aligned square of side spread centered on (x, y), with
// uniform headings. Draws only need to land inside the map bounds, not
// on free cells, so a point against a wall still seeds. Returns
// ErrMapExhausted if the square misses the map entirely.
func (f *Filter) InitPoint(m Map, x, y, spread float64) error {
	set := f.ActiveSet()
	return f.resetActive(func(i int) error {
		pose, err := f.drawPointPose(m, x, y, spread)
		if err != nil {
			return err
		}
		set.Samples[i].Pose = pose
		set.Histogram.Insert(pose, set.Samples[i].Weight)
		return nil
	})
}

// drawFreePose rejection-samples a position uniformly over the map's
// world extent until it lands on a free cell, up to the attempt
// budget. The heading is uniform when uniformHeading is set and zero
// otherwise.
func (f *Filter) drawFreePose(m Map, uniformHeading bool) (Vec, error) {
	sizeX, sizeY := m.Size()
	scale := m.Scale()
	extentX := float64(sizeX) * scale
	extentY := float64(sizeY) * scale

	for try := 0; try < f.maxTries; try++ {
		pose := Vec{
			X: (f.rng.Float64() - 0.5) * extentX,
			Y: (f.rng.Float64() - 0.5) * extentY,
		}
		if uniformHeading {
			pose.Theta = (f.rng.Float64() - 0.5) * 2 * math.Pi
		}
		ix, iy := GridCoords(m, pose.X, pose.Y)
		if m.Valid(ix, iy) && m.OccState(ix, iy) == OccFree {
			return pose, nil
		}
	}
	return Vec{}, ErrMapExhausted
}

// drawPointPose rejection-samples a pose from the square of side
// spread around (x, y) until it lands inside the map bounds, up to the
// attempt budget. Heading is always uniform.
func (f *Filter) drawPointPose(m Map, x, y, spread float64) (Vec, error) {
	for try := 0; try < f.maxTries; try++ {
		pose := Vec{
			X:     x + (f.rng.Float64()-0.5)*spread,
			Y:     y + (f.rng.Float64()-0.5)*spread,
			Theta: (f.rng.Float64() - 0.5) * 2 * math.Pi,
		}
		ix, iy := GridCoords(m, pose.X, pose.Y)
		if m.Valid(ix, iy) {
			return pose, nil
		}
	}
	return Vec{}, ErrMapExhausted
}
