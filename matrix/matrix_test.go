// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the numeric policy helpers.
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit/matrix"
)

// TestValidateSquare covers nil inputs, square and non-square cases.
func TestValidateSquare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		m       mat.Matrix
		wantErr error
	}{
		{"nil", nil, matrix.ErrNilMatrix},
		{"2x2", mat.NewDense(2, 2, nil), nil},
		{"2x3", mat.NewDense(2, 3, nil), matrix.ErrNonSquare},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := matrix.ValidateSquare(tc.m)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// TestValidateFinite rejects NaN and ±Inf anywhere in the matrix.
func TestValidateFinite(t *testing.T) {
	t.Parallel()

	ok := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, matrix.ValidateFinite(ok))

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := mat.NewDense(2, 2, []float64{1, 2, bad, 4})
		assert.ErrorIs(t, matrix.ValidateFinite(m), matrix.ErrNaNInf)
	}
	assert.ErrorIs(t, matrix.ValidateFiniteSlice([]float64{0, math.NaN()}), matrix.ErrNaNInf)
	assert.NoError(t, matrix.ValidateFiniteSlice(nil))
}

// TestValidateSymmetric checks the relative tolerance and the asymmetry sentinel.
func TestValidateSymmetric(t *testing.T) {
	t.Parallel()

	sym := mat.NewDense(2, 2, []float64{1e6, 2e6, 2e6 + 1e-4, 3})
	require.NoError(t, matrix.ValidateSymmetric(sym, 1e-9))

	asym := mat.NewDense(2, 2, []float64{1, 2, 2.1, 3})
	require.ErrorIs(t, matrix.ValidateSymmetric(asym, 1e-9), matrix.ErrAsymmetry)
	require.ErrorIs(t, matrix.ValidateSymmetric(sym, math.NaN()), matrix.ErrNaNInf)
}

// TestValidateCovariance rejects negative variances.
func TestValidateCovariance(t *testing.T) {
	t.Parallel()

	require.NoError(t, matrix.ValidateCovariance(matrix.Diagonal(1, 0, 2), matrix.DefaultSymmetryTol))
	require.ErrorIs(t, matrix.ValidateCovariance(matrix.Diagonal(1, -1), matrix.DefaultSymmetryTol), matrix.ErrNegativeVariance)
}

// TestNewSym covers shape errors and copying semantics.
func TestNewSym(t *testing.T) {
	t.Parallel()

	_, err := matrix.NewSym(2, []float64{1, 2, 3}, matrix.DefaultSymmetryTol)
	require.ErrorIs(t, err, matrix.ErrBadShape)
	_, err = matrix.NewSym(0, nil, matrix.DefaultSymmetryTol)
	require.ErrorIs(t, err, matrix.ErrBadShape)

	buf := []float64{4, 1, 1, 9}
	s, err := matrix.NewSym(2, buf, matrix.DefaultSymmetryTol)
	require.NoError(t, err)
	buf[1] = 100 // caller buffer must not alias
	assert.Equal(t, 1.0, s.At(0, 1))
	assert.Equal(t, 1.0, s.At(1, 0))
}

// TestSymmetrizeAndRegularize exercises the repair helpers used by the engine.
func TestSymmetrizeAndRegularize(t *testing.T) {
	t.Parallel()

	a := mat.NewDense(2, 2, []float64{1, 2, 4, 3})
	s := matrix.Symmetrize(a)
	assert.Equal(t, 3.0, s.At(0, 1))
	assert.Equal(t, 3.0, s.At(1, 0))

	r := matrix.AddDiagonal(s, 0.5)
	assert.Equal(t, 1.5, r.At(0, 0))
	assert.Equal(t, 3.5, r.At(1, 1))
	assert.Equal(t, 1.0, s.At(0, 0), "input must not be mutated")
	assert.Equal(t, 3.5, matrix.MaxAbsDiag(r))

	sub, err := matrix.SubSym(r, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.5, sub.At(0, 0))
	_, err = matrix.SubSym(r, 1, 2)
	require.ErrorIs(t, err, matrix.ErrBadShape)
}

// TestSpectral checks eigenvalue ordering and the PSD decision.
func TestSpectral(t *testing.T) {
	t.Parallel()

	s := matrix.Diagonal(3, 1, 2)
	vals, err := matrix.Eigenvalues(s)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, vals, 1e-12)

	lo, err := matrix.MinEigenvalue(s)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, lo, 1e-12)

	psd, err := matrix.IsPSD(matrix.Diagonal(1, 0), matrix.DefaultPSDEps)
	require.NoError(t, err)
	assert.True(t, psd)

	// [[1,2],[2,1]] has eigenvalues −1 and 3.
	indef, err := matrix.NewSym(2, []float64{1, 2, 2, 1}, matrix.DefaultSymmetryTol)
	require.NoError(t, err)
	psd, err = matrix.IsPSD(indef, matrix.DefaultPSDEps)
	require.NoError(t, err)
	assert.False(t, psd)

	_, err = matrix.Eigenvalues(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}
