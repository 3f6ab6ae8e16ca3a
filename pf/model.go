package pf

// MotionModel advances every live sample of a set in place, typically
// by applying a noisy odometry delta. Implementations must not change
// set.Count or sample weights.
type MotionModel interface {
	Apply(set *SampleSet)
}

// MotionFunc adapts a plain function to the MotionModel interface.
type MotionFunc func(set *SampleSet)

// Apply calls f(set).
func (f MotionFunc) Apply(set *SampleSet) { f(set) }

// SensorModel reweights every live sample of a set against the current
// observation and returns the total unnormalized weight. A total of
// zero (or less) tells the filter the observation ruled out the entire
// population.
type SensorModel interface {
	Weigh(set *SampleSet) float64
}

// SensorFunc adapts a plain function to the SensorModel interface.
type SensorFunc func(set *SampleSet) float64

// Weigh calls f(set).
func (f SensorFunc) Weigh(set *SampleSet) float64 { return f(set) }

// PoseGenerator supplies poses for model-driven initialization,
// one call per sample.
type PoseGenerator interface {
	Generate() Vec
}

// PoseGeneratorFunc adapts a plain function to the PoseGenerator
// interface.
type PoseGeneratorFunc func() Vec

// Generate calls f().
func (f PoseGeneratorFunc) Generate() Vec { return f() }

// Hypothesis is an externally supplied pose mode, typically from a
// secondary localization source, that the hypothesis-mixing resamplers
// seed fresh samples around.
//
// Cov is consumed component-wise rather than as a true covariance:
// Cov[0][0] and Cov[1][1] feed the bivariate sampler directly as
// standard deviations, and Cov[0][1] enters only through the
// correlation rho = Cov[0][1] / (Cov[0][0] * Cov[1][1]). Callers that
// hold a real covariance matrix must convert before passing it in.
type Hypothesis struct {
	Mean [2]float64
	Cov  [2][2]float64
}
