package pf

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMaxRejectionTries bounds each free-space rejection loop when
// Config.MaxRejectionTries is zero. One try is a PRNG draw and a map
// lookup, so the budget errs high.
const DefaultMaxRejectionTries = 100000

// Config sizes a Filter. The zero value is not usable; start from
// DefaultConfig and override.
type Config struct {
	// MinSamples and MaxSamples bound the population size. Both sample
	// sets are allocated at MaxSamples capacity up front.
	MinSamples int
	MaxSamples int

	// OverheadSamples is capacity held back from the KLD draw by the
	// map-aware resamplers so recovery samples always have room.
	OverheadSamples int

	// PopulationErr and PopulationZ are the KLD-sampling parameters:
	// the allowed divergence between the population and its histogram
	// approximation, and the standard normal quantile of the
	// confidence on that bound. Zero selects 0.01 and 3.
	PopulationErr float64
	PopulationZ   float64

	// Seed seeds the filter-owned PRNG. Zero selects a time-based
	// seed; fix it for reproducible runs.
	Seed uint64

	// MaxRejectionTries bounds each free-space rejection loop before
	// ErrMapExhausted. Zero selects DefaultMaxRejectionTries.
	MaxRejectionTries int
}

// DefaultConfig returns the stock filter sizing: 100..5000 samples,
// 100 samples of recovery overhead and the usual KLD parameters.
func DefaultConfig() Config {
	return Config{
		MinSamples:        100,
		MaxSamples:        5000,
		OverheadSamples:   100,
		PopulationErr:     0.01,
		PopulationZ:       3,
		MaxRejectionTries: DefaultMaxRejectionTries,
	}
}

// Filter is an adaptive particle filter over planar poses. It owns two
// sample sets and a PRNG; see the package comment for the update
// discipline. A Filter is not safe for concurrent use.
type Filter struct {
	minSamples      int
	maxSamples      int
	overheadSamples int
	popErr          float64
	popZ            float64
	maxTries        int
	seed            uint64

	sets   [2]SampleSet
	active int

	sumSquareWeights float64

	rng     *rand.Rand
	stdNorm distuv.Normal

	// Scratch for snapshotting weights into the discrete sampler.
	weightBuf []float64
}

// New builds a Filter from cfg, calling newHistogram once per sample
// set with a capacity hint of three bins per sample.
func New(cfg Config, newHistogram HistogramFactory) (*Filter, error) {
	if cfg.MaxSamples <= 0 {
		return nil, fmt.Errorf("pf: max samples %d, want > 0", cfg.MaxSamples)
	}
	if cfg.MinSamples <= 0 || cfg.MinSamples > cfg.MaxSamples {
		return nil, fmt.Errorf("pf: min samples %d, want 1..%d", cfg.MinSamples, cfg.MaxSamples)
	}
	if cfg.OverheadSamples < 0 || cfg.OverheadSamples >= cfg.MaxSamples {
		return nil, fmt.Errorf("pf: overhead samples %d, want 0..%d", cfg.OverheadSamples, cfg.MaxSamples-1)
	}
	if newHistogram == nil {
		return nil, fmt.Errorf("pf: nil histogram factory")
	}

	f := &Filter{
		minSamples:      cfg.MinSamples,
		maxSamples:      cfg.MaxSamples,
		overheadSamples: cfg.OverheadSamples,
		popErr:          cfg.PopulationErr,
		popZ:            cfg.PopulationZ,
		maxTries:        cfg.MaxRejectionTries,
		seed:            cfg.Seed,
	}
	if f.popErr == 0 {
		f.popErr = 0.01
	}
	if f.popZ == 0 {
		f.popZ = 3
	}
	if f.maxTries == 0 {
		f.maxTries = DefaultMaxRejectionTries
	}
	if f.seed == 0 {
		f.seed = uint64(time.Now().UnixNano())
	}
	f.rng = rand.New(rand.NewPCG(f.seed, f.seed))
	f.stdNorm = distuv.Normal{Mu: 0, Sigma: 1, Src: f.rng}
	f.weightBuf = make([]float64, 0, cfg.MaxSamples)

	for j := range f.sets {
		set := &f.sets[j]
		set.Samples = make([]Sample, cfg.MaxSamples)
		set.Count = cfg.MaxSamples
		w := 1.0 / float64(cfg.MaxSamples)
		for i := range set.Samples {
			set.Samples[i].Weight = w
		}
		set.Histogram = newHistogram(3 * cfg.MaxSamples)
		if set.Histogram == nil {
			return nil, fmt.Errorf("pf: histogram factory returned nil")
		}
		set.Clusters = make([]Cluster, maxClusterCount)
	}
	return f, nil
}

// ActiveSet returns the set current reads and in-place updates apply
// to. The pointer stays valid across resamples but the set it names
// changes on every flip.
func (f *Filter) ActiveSet() *SampleSet {
	return &f.sets[f.active]
}

func (f *Filter) inactiveSet() *SampleSet {
	return &f.sets[(f.active+1)%2]
}

func (f *Filter) flip() {
	f.active = (f.active + 1) % 2
}

// MinSamples returns the configured population floor.
func (f *Filter) MinSamples() int { return f.minSamples }

// MaxSamples returns the configured population ceiling.
func (f *Filter) MaxSamples() int { return f.maxSamples }

// Seed returns the PRNG seed in effect, resolved from the clock when
// Config.Seed was zero.
func (f *Filter) Seed() uint64 { return f.seed }

// SumSquaredWeights returns the sum of squared normalized weights from
// the most recent sensor update. It is the reciprocal of the effective
// sample size.
func (f *Filter) SumSquaredWeights() float64 { return f.sumSquareWeights }

// ESS returns the effective sample size implied by the last sensor
// update, or zero before any update.
func (f *Filter) ESS() float64 {
	if f.sumSquareWeights <= 0 {
		return 0
	}
	return 1 / f.sumSquareWeights
}
