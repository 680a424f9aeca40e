// SPDX-License-Identifier: MIT
// Package paramspace_test contains unit tests for the global parameter space.
package paramspace_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/matrix"
	"github.com/katalvlaran/treefit/paramspace"
)

// TestAllocate rejects non-positive dimensions.
func TestAllocate(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -3} {
		_, err := paramspace.Allocate(n)
		assert.ErrorIs(t, err, treefit.ErrDimensionMismatch)
	}
	s, err := paramspace.Allocate(5)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Dim())
	assert.Equal(t, 0.0, mat.Norm(s.State(), 2))
}

// TestView_WritesThrough checks that views alias the global state.
func TestView_WritesThrough(t *testing.T) {
	t.Parallel()

	s, err := paramspace.Allocate(6)
	require.NoError(t, err)
	r := paramspace.Range{Offset: 2, Dim: 3}
	v, c, err := s.View(r)
	require.NoError(t, err)
	v.SetVec(1, 7)
	assert.Equal(t, 7.0, s.State().AtVec(3))
	assert.Equal(t, 3, c.SymmetricDim())

	require.NoError(t, s.SetVariance(r, 4))
	assert.Equal(t, 4.0, c.At(0, 0))
	assert.Equal(t, 0.0, s.Covariance().At(0, 0))
	assert.Equal(t, 4.0, s.Covariance().At(4, 4))

	_, _, err = s.View(paramspace.Range{Offset: 4, Dim: 3})
	assert.ErrorIs(t, err, treefit.ErrDimensionMismatch)
	_, _, err = s.View(paramspace.Range{Offset: 0, Dim: 0})
	assert.ErrorIs(t, err, treefit.ErrDimensionMismatch)
}

// TestSlice_Copies checks that Slice is detached from the live state.
func TestSlice_Copies(t *testing.T) {
	t.Parallel()

	s, err := paramspace.Allocate(3)
	require.NoError(t, err)
	s.State().SetVec(0, 1)
	v, c, err := s.Slice(paramspace.Range{Offset: 0, Dim: 2})
	require.NoError(t, err)
	v.SetVec(0, 9)
	c.SetSym(0, 0, 9)
	assert.Equal(t, 1.0, s.State().AtVec(0))
	assert.Equal(t, 0.0, s.Covariance().At(0, 0))
}

// TestCommit_Atomic rejects bad inputs without touching the state.
func TestCommit_Atomic(t *testing.T) {
	t.Parallel()

	s, err := paramspace.Allocate(2)
	require.NoError(t, err)
	good := mat.NewVecDense(2, []float64{1, 2})
	require.NoError(t, s.Commit(good, matrix.Diagonal(1, 1)))

	bad := mat.NewVecDense(2, []float64{math.NaN(), 0})
	err = s.Commit(bad, matrix.Diagonal(2, 2))
	assert.ErrorIs(t, err, treefit.ErrSingular)
	assert.Equal(t, 1.0, s.State().AtVec(0))
	assert.Equal(t, 1.0, s.Covariance().At(1, 1))

	err = s.Commit(mat.NewVecDense(3, nil), matrix.Diagonal(1, 1, 1))
	assert.ErrorIs(t, err, treefit.ErrDimensionMismatch)

	err = s.Commit(good, matrix.Diagonal(math.Inf(1), 1))
	assert.ErrorIs(t, err, treefit.ErrSingular)
	assert.Equal(t, 1.0, s.Covariance().At(0, 0))
}

// TestResetAndClone covers Reset, ResetCovariance and Clone independence.
func TestResetAndClone(t *testing.T) {
	t.Parallel()

	s, err := paramspace.Allocate(2)
	require.NoError(t, err)
	require.NoError(t, s.Commit(mat.NewVecDense(2, []float64{1, 2}), matrix.Diagonal(3, 4)))

	c := s.Clone()
	s.ResetCovariance()
	assert.Equal(t, 2.0, s.State().AtVec(1))
	assert.Equal(t, 0.0, s.Covariance().At(1, 1))
	assert.Equal(t, 4.0, c.Covariance().At(1, 1))

	s.Reset()
	assert.Equal(t, 0.0, s.State().AtVec(1))
	assert.Equal(t, 2.0, c.State().AtVec(1))

	assert.ErrorIs(t, s.SetVariance(paramspace.Range{Offset: 0, Dim: 1}, -1), treefit.ErrBadInput)
}
