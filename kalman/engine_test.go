// SPDX-License-Identifier: MIT
// Package kalman_test contains unit tests for the Kalman update engine.
package kalman_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/kalman"
	"github.com/katalvlaran/treefit/matrix"
	"github.com/katalvlaran/treefit/paramspace"
)

func newSpace(t *testing.T, x []float64, diag ...float64) *paramspace.Space {
	t.Helper()
	s, err := paramspace.Allocate(len(x))
	require.NoError(t, err)
	require.NoError(t, s.Commit(mat.NewVecDense(len(x), x), matrix.Diagonal(diag...)))

	return s
}

// TestApply_ScalarUpdate checks the textbook 1D update.
func TestApply_ScalarUpdate(t *testing.T) {
	t.Parallel()

	s := newSpace(t, []float64{0}, 4)
	p := constraint.New(constraint.KindExternalPrior, 0, 1, 1)
	p.Residual.SetVec(0, 2)
	p.H.Set(0, 0, 1)
	p.V.SetSym(0, 0, 4)

	up, err := kalman.New(kalman.DefaultConfig()).Apply(s, p)
	require.NoError(t, err)
	assert.InDelta(t, 1, s.State().AtVec(0), 1e-12)
	assert.InDelta(t, 2, s.Covariance().At(0, 0), 1e-12)
	assert.InDelta(t, 0.5, up.Chi2, 1e-12)
	assert.Equal(t, 1, up.Dim)
	assert.False(t, up.Regularized)
}

// TestApply_ZeroResidual leaves the state unchanged and adds zero chi-square.
func TestApply_ZeroResidual(t *testing.T) {
	t.Parallel()

	s := newSpace(t, []float64{1, -2, 3}, 25, 25, 10)
	p := constraint.New(constraint.KindTrack, 0, 2, 3)
	p.H.Set(0, 0, 1)
	p.H.Set(0, 2, 0.5)
	p.H.Set(1, 1, 2)
	p.V.SetSym(0, 0, 0.01)
	p.V.SetSym(1, 1, 0.04)

	up, err := kalman.New(kalman.DefaultConfig()).Apply(s, p)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2, 3}, s.State().RawVector().Data)
	assert.Equal(t, 0.0, up.Chi2)
	assert.Less(t, s.Covariance().At(0, 0), 25.0)
}

// TestApply_ExactConstraint pins a linear combination with V = nil.
func TestApply_ExactConstraint(t *testing.T) {
	t.Parallel()

	s := newSpace(t, []float64{1, 1}, 1, 1)
	// Constraint x0 − x1 = 1: predicted x0 − x1, measured 1.
	p := constraint.New(constraint.KindKinematic, 0, 1, 2).Exact()
	p.Residual.SetVec(0, 1-(1-1))
	p.H.Set(0, 0, 1)
	p.H.Set(0, 1, -1)

	_, err := kalman.New(kalman.DefaultConfig()).Apply(s, p)
	require.NoError(t, err)
	x := s.State()
	assert.InDelta(t, 1, x.AtVec(0)-x.AtVec(1), 1e-12)
	ok, err := matrix.IsPSD(s.Covariance(), matrix.DefaultPSDEps)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestApply_ZeroEigenvalueRegularized: P = diag(1, 0), H = I, V = 0 is not
// invertible; the retry must yield a finite covariance.
func TestApply_ZeroEigenvalueRegularized(t *testing.T) {
	t.Parallel()

	s := newSpace(t, []float64{0, 0}, 1, 0)
	p := constraint.New(constraint.KindExternalPrior, 0, 2, 2).Exact()
	p.H.Set(0, 0, 1)
	p.H.Set(1, 1, 1)
	p.Residual.SetVec(0, 0.3)

	up, err := kalman.New(kalman.DefaultConfig()).Apply(s, p)
	require.NoError(t, err)
	assert.True(t, up.Regularized)
	assert.Greater(t, up.Lambda, 0.0)
	require.NoError(t, matrix.ValidateFinite(s.Covariance()))
	ok, err := matrix.IsPSD(s.Covariance(), matrix.DefaultPSDEps)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.3, s.State().AtVec(0), 1e-5)
}

// TestApply_SingularLeavesStateUntouched: an all-zero projection has λ = 0.
func TestApply_SingularLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	s := newSpace(t, []float64{1, 2}, 3, 4)
	p := constraint.New(constraint.KindTrack, 0, 2, 2)
	p.Residual.SetVec(0, 1)

	_, err := kalman.New(kalman.DefaultConfig()).Apply(s, p)
	require.ErrorIs(t, err, treefit.ErrSingular)
	assert.Equal(t, []float64{1, 2}, s.State().RawVector().Data)
	assert.Equal(t, 4.0, s.Covariance().At(1, 1))

	// Regularization switched off.
	s2 := newSpace(t, []float64{0, 0}, 1, 0)
	q := constraint.New(constraint.KindExternalPrior, 0, 2, 2).Exact()
	q.H.Set(0, 0, 1)
	q.H.Set(1, 1, 1)
	_, err = kalman.New(kalman.Config{}).Apply(s2, q)
	assert.ErrorIs(t, err, treefit.ErrSingular)
}

// TestApply_NearExactConstraint: a tight constraint on a correlated, widely
// scaled state leaves a positive semi-definite covariance with the
// constrained combination pinned.
func TestApply_NearExactConstraint(t *testing.T) {
	t.Parallel()

	s, err := paramspace.Allocate(3)
	require.NoError(t, err)
	cov, err := matrix.NewSym(3, []float64{
		1e4, 9e3, 1,
		9e3, 1e4, 2,
		1, 2, 1,
	}, 0)
	require.NoError(t, err)
	require.NoError(t, s.Commit(mat.NewVecDense(3, []float64{1, 2, 3}), cov))

	// x0 + x1 = 0 to 1e-6.
	p := constraint.New(constraint.KindMass, 0, 1, 3)
	p.Residual.SetVec(0, -3)
	p.H.Set(0, 0, 1)
	p.H.Set(0, 1, 1)
	p.V.SetSym(0, 0, 1e-12)

	_, err = kalman.New(kalman.DefaultConfig()).Apply(s, p)
	require.NoError(t, err)
	x, got := s.State(), s.Covariance()
	assert.InDelta(t, 0, x.AtVec(0)+x.AtVec(1), 1e-6)
	assert.InDelta(t, 0, got.At(0, 0)+2*got.At(0, 1)+got.At(1, 1), 1e-9)
	ok, err := matrix.IsPSD(got, matrix.DefaultPSDEps)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestApply_IndefiniteUpdateRejected: a negative measurement variance keeps
// R invertible but would leave an indefinite covariance.
func TestApply_IndefiniteUpdateRejected(t *testing.T) {
	t.Parallel()

	s := newSpace(t, []float64{1, 2}, 4, 1)
	p := constraint.New(constraint.KindTrack, 0, 1, 2)
	p.Residual.SetVec(0, 1)
	p.H.Set(0, 0, 1)
	p.V.SetSym(0, 0, -1)

	_, err := kalman.New(kalman.DefaultConfig()).Apply(s, p)
	require.ErrorIs(t, err, treefit.ErrSingular)
	assert.Equal(t, []float64{1, 2}, s.State().RawVector().Data)
	assert.Equal(t, 4.0, s.Covariance().At(0, 0))
	assert.Equal(t, 1.0, s.Covariance().At(1, 1))
}

// TestApply_Rejects covers shape and finiteness errors.
func TestApply_Rejects(t *testing.T) {
	t.Parallel()

	s := newSpace(t, []float64{0, 0}, 1, 1)
	e := kalman.New(kalman.DefaultConfig())

	_, err := e.Apply(s, constraint.New(constraint.KindMass, 0, 1, 3))
	assert.ErrorIs(t, err, treefit.ErrDimensionMismatch)

	p := constraint.New(constraint.KindMass, 0, 1, 2)
	p.H.Set(0, 0, 1)
	p.Residual.SetVec(0, math.NaN())
	_, err = e.Apply(s, p)
	assert.ErrorIs(t, err, treefit.ErrSingular)

	assert.ErrorIs(t, kalman.Config{RegularizationFactor: -1}.Validate(), treefit.ErrBadInput)
	assert.NoError(t, kalman.DefaultConfig().Validate())
}
