// SPDX-License-Identifier: MIT

package kalman

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/matrix"
	"github.com/katalvlaran/treefit/paramspace"
)

// Config bounds the regularization retry.
type Config struct {
	// RegularizationFactor scales max|diag R| into the λ added on retry.
	RegularizationFactor float64 `yaml:"regularization_factor" env:"FACTOR"`

	// MaxRegularization caps λ. Zero or negative disables the cap.
	MaxRegularization float64 `yaml:"max_regularization" env:"MAX"`
}

// DefaultConfig returns the stock regularization settings.
func DefaultConfig() Config {
	return Config{RegularizationFactor: 1e-6, MaxRegularization: 1}
}

// Validate reports an inconsistent configuration.
func (c Config) Validate() error {
	if c.RegularizationFactor < 0 || math.IsNaN(c.RegularizationFactor) || math.IsInf(c.RegularizationFactor, 0) {
		return fmt.Errorf("kalman.Config: regularization factor %g: %w", c.RegularizationFactor, treefit.ErrBadInput)
	}

	return nil
}

// Update summarizes one accepted update.
type Update struct {
	Chi2        float64
	Dim         int
	Regularized bool
	Lambda      float64
}

// Engine applies projections. It holds no per-fit state and is safe for
// concurrent use on distinct spaces.
type Engine struct {
	cfg Config
}

// New returns an Engine with the given configuration.
func New(cfg Config) *Engine { return &Engine{cfg: cfg} }

func engineErrorf(tag string, err error) error {
	return fmt.Errorf("kalman.%s: %w", tag, err)
}

// Apply runs one update of s with p.
//
// Errors:
//   - treefit.ErrDimensionMismatch if p does not fit the space.
//   - treefit.ErrSingular if R cannot be inverted after one regularized retry,
//     the update is not finite, or the updated covariance has an eigenvalue
//     below −matrix.DefaultPSDEps·max(1, λmax). s is left untouched.
//
// Complexity: O(n³ + m³) for n state and m residual components.
func (e *Engine) Apply(s *paramspace.Space, p *constraint.Projection) (Update, error) {
	n := s.Dim()
	if err := p.Validate(n, -1); err != nil {
		return Update{}, engineErrorf("Apply", err)
	}
	m := p.Rows()
	if err := matrix.ValidateFinite(p.Residual); err != nil {
		return Update{}, engineErrorf("Apply", fmt.Errorf("%s residual: %w: %w", p.Kind, treefit.ErrSingular, err))
	}

	cov := s.Covariance()
	var pht mat.Dense
	pht.Mul(cov, p.H.T())
	var hpht mat.Dense
	hpht.Mul(p.H, &pht)
	if p.V != nil {
		hpht.Add(&hpht, p.V)
	}
	r := matrix.Symmetrize(&hpht)

	rinv, lambda, err := e.invert(r)
	if err != nil {
		return Update{}, engineErrorf("Apply", fmt.Errorf("%s node %d: %w", p.Kind, p.Node, err))
	}

	var gain mat.Dense
	gain.Mul(&pht, rinv)

	var dx mat.VecDense
	dx.MulVec(&gain, p.Residual)
	x := mat.VecDenseCopyOf(s.State())
	x.AddVec(x, &dx)

	next := josephUpdate(cov, p, &gain, lambda)
	if ok, err := matrix.IsPSD(next, matrix.DefaultPSDEps); err != nil || !ok {
		return Update{}, engineErrorf("Apply", fmt.Errorf("%s node %d: covariance not positive semi-definite: %w",
			p.Kind, p.Node, treefit.ErrSingular))
	}

	chi2 := mat.Inner(p.Residual, rinv, p.Residual)
	if math.IsNaN(chi2) || math.IsInf(chi2, 0) {
		return Update{}, engineErrorf("Apply", fmt.Errorf("%s node %d: chi2=%g: %w", p.Kind, p.Node, chi2, treefit.ErrSingular))
	}
	if err := s.Commit(x, next); err != nil {
		return Update{}, engineErrorf("Apply", fmt.Errorf("%s node %d: %w", p.Kind, p.Node, err))
	}

	return Update{Chi2: chi2, Dim: m, Regularized: lambda > 0, Lambda: lambda}, nil
}

// josephUpdate returns (I−K·H)·P·(I−K·H)ᵀ + K·(V+λ·I)·Kᵀ, symmetrized.
// It equals P − K·H·P for the gain of R = H·P·Hᵀ + V + λ·I but keeps
// its positive semi-definiteness under roundoff.
func josephUpdate(cov *mat.SymDense, p *constraint.Projection, gain *mat.Dense, lambda float64) *mat.SymDense {
	n := cov.SymmetricDim()
	var ikh mat.Dense
	ikh.Mul(gain, p.H)
	ikh.Scale(-1, &ikh)
	for i := 0; i < n; i++ {
		ikh.Set(i, i, ikh.At(i, i)+1)
	}
	var left, next mat.Dense
	left.Mul(&ikh, cov)
	next.Mul(&left, ikh.T())

	var noise mat.Matrix
	switch {
	case p.V != nil && lambda > 0:
		noise = matrix.AddDiagonal(p.V, lambda)
	case p.V != nil:
		noise = p.V
	case lambda > 0:
		noise = matrix.AddDiagonal(mat.NewSymDense(p.Rows(), nil), lambda)
	}
	if noise != nil {
		var kv, kvk mat.Dense
		kv.Mul(gain, noise)
		kvk.Mul(&kv, gain.T())
		next.Add(&next, &kvk)
	}

	return matrix.Symmetrize(&next)
}

// invert returns R⁻¹ and the λ that was needed (0 if none).
func (e *Engine) invert(r *mat.SymDense) (*mat.SymDense, float64, error) {
	if inv, err := choleskyInverse(r); err == nil {
		return inv, 0, nil
	}
	lambda := e.cfg.RegularizationFactor * matrix.MaxAbsDiag(r)
	if e.cfg.MaxRegularization > 0 {
		lambda = math.Min(lambda, e.cfg.MaxRegularization)
	}
	if lambda <= 0 || math.IsNaN(lambda) {
		return nil, 0, fmt.Errorf("no regularization scale: %w", treefit.ErrSingular)
	}
	inv, err := choleskyInverse(matrix.AddDiagonal(r, lambda))
	if err != nil {
		return nil, 0, fmt.Errorf("lambda=%g: %w: %w", lambda, treefit.ErrSingular, err)
	}

	return inv, lambda, nil
}

var errNotPositiveDefinite = errors.New("kalman: matrix not positive definite")

func choleskyInverse(r *mat.SymDense) (*mat.SymDense, error) {
	var ch mat.Cholesky
	if ok := ch.Factorize(r); !ok {
		return nil, errNotPositiveDefinite
	}
	inv := mat.NewSymDense(r.SymmetricDim(), nil)
	if err := ch.InverseTo(inv); err != nil {
		return nil, err
	}
	if err := matrix.ValidateFinite(inv); err != nil {
		return nil, err
	}

	return inv, nil
}
