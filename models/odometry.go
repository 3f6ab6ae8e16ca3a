package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/amcl/pf"
)

// Odometry is the sampled odometry motion model. A displacement
// between two odometry poses is decomposed into an initial rotation, a
// translation and a final rotation; each sample replays the
// decomposition with noise scaled by the alpha parameters.
//
// Alpha1 and Alpha2 scale rotational noise from rotation and
// translation respectively; Alpha3 and Alpha4 scale translational
// noise from translation and rotation. All four are variances per
// squared unit of motion, as in the standard formulation.
type Odometry struct {
	Alpha1 float64
	Alpha2 float64
	Alpha3 float64
	Alpha4 float64

	noise distuv.Normal
}

// NewOdometry returns an odometry model drawing its noise from src.
func NewOdometry(alpha1, alpha2, alpha3, alpha4 float64, src rand.Source) *Odometry {
	return &Odometry{
		Alpha1: alpha1,
		Alpha2: alpha2,
		Alpha3: alpha3,
		Alpha4: alpha4,
		noise:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// sample draws from a zero-mean normal with variance v.
func (o *Odometry) sample(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return o.noise.Rand() * math.Sqrt(v)
}

// Step returns the motion model for the displacement from prev to cur
// in odometry coordinates. Degenerate displacements are handled the
// usual way: translations under a centimeter skip the initial
// rotation so a pure turn in place does not pick up spurious heading
// noise.
func (o *Odometry) Step(prev, cur pf.Vec) pf.MotionModel {
	dx := cur.X - prev.X
	dy := cur.Y - prev.Y

	trans := math.Hypot(dx, dy)
	rot1 := 0.0
	if trans >= 0.01 {
		rot1 = pf.NormalizeAngle(math.Atan2(dy, dx) - prev.Theta)
	}
	rot2 := pf.NormalizeAngle(cur.Theta - prev.Theta - rot1)

	return pf.MotionFunc(func(set *pf.SampleSet) {
		for i := 0; i < set.Count; i++ {
			pose := &set.Samples[i].Pose

			r1 := rot1 - o.sample(o.Alpha1*rot1*rot1+o.Alpha2*trans*trans)
			tr := trans - o.sample(o.Alpha3*trans*trans+o.Alpha4*rot1*rot1+o.Alpha4*rot2*rot2)
			r2 := rot2 - o.sample(o.Alpha1*rot2*rot2+o.Alpha2*trans*trans)

			pose.X += tr * math.Cos(pose.Theta+r1)
			pose.Y += tr * math.Sin(pose.Theta+r1)
			pose.Theta = pf.NormalizeAngle(pose.Theta + r1 + r2)
		}
	})
}
