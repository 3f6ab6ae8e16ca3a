package models

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/amcl/pf"
)

func makeSet(poses ...pf.Vec) *pf.SampleSet {
	set := pf.NewSampleSet(len(poses), nil)
	for i, p := range poses {
		set.Samples[i] = pf.Sample{Pose: p, Weight: 1 / float64(len(poses))}
	}
	set.Count = len(poses)
	return set
}

func poses(set *pf.SampleSet) []pf.Vec {
	out := make([]pf.Vec, set.Count)
	for i := range out {
		out[i] = set.Samples[i].Pose
	}
	return out
}

func TestOdometry_NoiselessTranslation(t *testing.T) {
	// All alphas zero: the noise stream is never consulted and every
	// sample replays the displacement exactly.
	o := NewOdometry(0, 0, 0, 0, rand.New(rand.NewPCG(1, 1)))
	set := makeSet(pf.Vec{}, pf.Vec{X: 2, Y: 3})

	o.Step(pf.Vec{}, pf.Vec{X: 1}).Apply(set)

	want := []pf.Vec{{X: 1}, {X: 3, Y: 3}}
	if diff := cmp.Diff(want, poses(set)); diff != "" {
		t.Errorf("poses mismatch (-want +got):\n%s", diff)
	}
}

func TestOdometry_NoiselessRotation(t *testing.T) {
	o := NewOdometry(0, 0, 0, 0, rand.New(rand.NewPCG(1, 1)))
	set := makeSet(pf.Vec{})

	o.Step(pf.Vec{}, pf.Vec{Theta: math.Pi / 2}).Apply(set)

	got := set.Samples[0].Pose
	if got.X != 0 || got.Y != 0 {
		t.Errorf("expected a turn in place, got %v", got)
	}
	if math.Abs(got.Theta-math.Pi/2) > 1e-9 {
		t.Errorf("expected heading pi/2, got %g", got.Theta)
	}
}

func TestOdometry_TranslationFollowsSampleHeading(t *testing.T) {
	// The odometry delta runs along +x, but a sample facing +y moves
	// along its own heading.
	o := NewOdometry(0, 0, 0, 0, rand.New(rand.NewPCG(1, 1)))
	set := makeSet(pf.Vec{Theta: math.Pi / 2})

	o.Step(pf.Vec{}, pf.Vec{X: 1}).Apply(set)

	got := set.Samples[0].Pose
	if math.Abs(got.X) > 1e-12 {
		t.Errorf("expected x near 0, got %g", got.X)
	}
	if math.Abs(got.Y-1) > 1e-12 {
		t.Errorf("expected y 1, got %g", got.Y)
	}
}

func TestOdometry_TinyTranslationSkipsInitialRotation(t *testing.T) {
	// A sub-centimeter creep must not be decomposed into a turn toward
	// the displacement direction: for a sample facing +y the motion
	// stays along +y.
	o := NewOdometry(0, 0, 0, 0, rand.New(rand.NewPCG(1, 1)))
	set := makeSet(pf.Vec{Theta: math.Pi / 2})

	o.Step(pf.Vec{Theta: math.Pi / 2}, pf.Vec{X: 0.005, Theta: math.Pi / 2}).Apply(set)

	got := set.Samples[0].Pose
	if math.Abs(got.X) > 1e-12 {
		t.Errorf("expected x near 0, got %g", got.X)
	}
	if math.Abs(got.Y-0.005) > 1e-12 {
		t.Errorf("expected y 0.005, got %g", got.Y)
	}
	if math.Abs(got.Theta-math.Pi/2) > 1e-9 {
		t.Errorf("expected unchanged heading, got %g", got.Theta)
	}
}

func TestOdometry_NoiseSpread(t *testing.T) {
	o := NewOdometry(0.2, 0.2, 0.2, 0.2, rand.New(rand.NewPCG(5, 5)))

	n := 400
	all := make([]pf.Vec, n)
	set := makeSet(all...)

	o.Step(pf.Vec{}, pf.Vec{X: 1}).Apply(set)

	var mx, mxx float64
	for i := 0; i < set.Count; i++ {
		p := set.Samples[i].Pose
		mx += p.X
		mxx += p.X * p.X
		if p.Theta < -math.Pi || p.Theta > math.Pi {
			t.Fatalf("sample %d: heading %g not normalized", i, p.Theta)
		}
	}
	mean := mx / float64(n)
	variance := mxx/float64(n) - mean*mean
	if mean < 0.7 || mean > 1.3 {
		t.Errorf("expected mean advance near 1, got %g", mean)
	}
	if variance < 0.01 {
		t.Errorf("expected translational noise to spread the samples, variance %g", variance)
	}
}
