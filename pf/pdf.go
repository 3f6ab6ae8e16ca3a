package pf

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// discretePDF draws sample indices in proportion to a weight vector.
type discretePDF struct {
	dist distuv.Categorical
}

// newDiscretePDF validates the weights and builds the sampler. Weights
// with zero total mass are rejected with ErrEmptyDistribution before
// they reach the categorical distribution.
func newDiscretePDF(weights []float64, src rand.Source) (*discretePDF, error) {
	if len(weights) == 0 || floats.Sum(weights) <= 0 {
		return nil, ErrEmptyDistribution
	}
	return &discretePDF{dist: distuv.NewCategorical(weights, src)}, nil
}

// index draws one category.
func (p *discretePDF) index() int {
	return int(p.dist.Rand())
}

// gaussianPDF samples poses from a trivariate normal over
// (x, y, theta).
type gaussianPDF struct {
	mean Vec

	// Positive-definite path.
	normal *distmv.Normal
	buf    []float64

	// Eigendecomposition fallback for semidefinite covariances:
	// rotation columns scaled by the square roots of the clamped
	// eigenvalues. rot == nil means the covariance was unusable and
	// sampling collapses to the mean.
	rot     *mat.Dense
	scale   [3]float64
	stdNorm distuv.Normal
}

// newGaussianPDF builds the sampler. The covariance is symmetrized,
// then handed to a Cholesky-backed normal; covariances that are merely
// positive semidefinite (a zero variance row is common when heading is
// pinned) fall back to an eigendecomposition with negative eigenvalues
// clamped to zero.
func newGaussianPDF(mean Vec, cov Mat, src rand.Source) *gaussianPDF {
	data := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			data[3*i+j] = 0.5 * (cov[i][j] + cov[j][i])
		}
	}
	sym := mat.NewSymDense(3, data)
	mu := []float64{mean.X, mean.Y, mean.Theta}

	if normal, ok := distmv.NewNormal(mu, sym, src); ok {
		return &gaussianPDF{mean: mean, normal: normal}
	}

	g := &gaussianPDF{
		mean:    mean,
		stdNorm: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return g
	}
	vals := eig.Values(nil)
	for i, v := range vals {
		if v > 0 {
			g.scale[i] = math.Sqrt(v)
		}
	}
	g.rot = mat.NewDense(3, 3, nil)
	eig.VectorsTo(g.rot)
	return g
}

// sample draws one pose.
func (p *gaussianPDF) sample() Vec {
	if p.normal != nil {
		p.buf = p.normal.Rand(p.buf)
		return Vec{X: p.buf[0], Y: p.buf[1], Theta: p.buf[2]}
	}
	if p.rot == nil {
		return p.mean
	}
	var n [3]float64
	for i := range n {
		n[i] = p.stdNorm.Rand() * p.scale[i]
	}
	v := p.mean
	v.X += p.rot.At(0, 0)*n[0] + p.rot.At(0, 1)*n[1] + p.rot.At(0, 2)*n[2]
	v.Y += p.rot.At(1, 0)*n[0] + p.rot.At(1, 1)*n[1] + p.rot.At(1, 2)*n[2]
	v.Theta += p.rot.At(2, 0)*n[0] + p.rot.At(2, 1)*n[1] + p.rot.At(2, 2)*n[2]
	return v
}

// sampleBivariate draws a correlated planar offset: sx and sy are
// standard deviations, rho the correlation coefficient.
func (f *Filter) sampleBivariate(sx, sy, rho float64) (dx, dy float64) {
	u := f.stdNorm.Rand()
	v := f.stdNorm.Rand()
	return sx * u, sy * (rho*u + math.Sqrt(1-rho*rho)*v)
}
