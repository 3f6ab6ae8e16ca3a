package pf

import (
	"fmt"
	"math"
)

// Vec is a planar pose: position in meters, heading in radians.
// Heading is not normalized on assignment; consumers that need a
// wrapped angle call NormalizeAngle.
type Vec struct {
	X     float64
	Y     float64
	Theta float64
}

// Mat is a 3x3 covariance over (x, y, theta). Row-major, symmetric by
// convention; nothing in this package enforces symmetry.
type Mat [3][3]float64

// IdentityMat returns the 3x3 identity.
func IdentityMat() Mat {
	return Mat{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Diagonal returns a covariance with the given variances on the
// diagonal and zeros elsewhere.
func Diagonal(vx, vy, vtheta float64) Mat {
	var m Mat
	m[0][0] = vx
	m[1][1] = vy
	m[2][2] = vtheta
	return m
}

// NormalizeAngle wraps a into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	return math.Atan2(math.Sin(a), math.Cos(a))
}

// String formats the pose for log lines.
func (v Vec) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.1fdeg)", v.X, v.Y, v.Theta*180/math.Pi)
}
