// SPDX-License-Identifier: MIT

// Package matrix - symmetric constructors and repairs.
//
// Purpose:
//   - Build *mat.SymDense from flat row-major buffers with full validation.
//   - Repair asymmetry drift after non-symmetric products (P − K·H·P).
//   - Provide diagonal regularization used by the Kalman engine retry path.
//
// Complexity quicksheet:
//   - NewSym: O(n²); Symmetrize: O(n²); AddDiagonal: O(n²) copy + O(n).

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewSym builds an n×n symmetric matrix from a flat row-major buffer.
//
// Implementation:
//   - Stage 1: validate n>0 and len(data)==n*n.
//   - Stage 2: wrap as Dense and validate finite + symmetric within tol.
//   - Stage 3: copy into a fresh SymDense (upper triangle is authoritative).
//
// Errors:
//   - ErrBadShape, ErrNaNInf, ErrAsymmetry.
//
// Complexity:
//   - Time O(n²), Space O(n²).
func NewSym(n int, data []float64, tol float64) (*mat.SymDense, error) {
	if n <= 0 || len(data) != n*n {
		return nil, validatorErrorf("NewSym", fmt.Errorf("n=%d len=%d: %w", n, len(data), ErrBadShape))
	}
	// Copy so callers may reuse their buffer.
	buf := make([]float64, len(data))
	copy(buf, data)
	d := mat.NewDense(n, n, buf)
	if err := ValidateSymmetric(d, tol); err != nil {
		return nil, validatorErrorf("NewSym", err)
	}

	return Symmetrize(d), nil
}

// Diagonal returns an n×n SymDense with the given diagonal.
// Complexity: O(n²) zeroing + O(n) writes.
func Diagonal(diag ...float64) *mat.SymDense {
	n := len(diag)
	s := mat.NewSymDense(n, nil)
	for i, v := range diag {
		s.SetSym(i, i, v)
	}

	return s
}

// Symmetrize returns (A + Aᵀ)/2 as a fresh SymDense. A must be square.
//
// Behavior highlights:
//   - Deterministic i→j (j ≥ i) fill; the result is exactly symmetric.
//
// Complexity: Time O(n²), Space O(n²).
func Symmetrize(a mat.Matrix) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	var i, j int
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	return s
}

// AddDiagonal returns S + λ·I as a fresh SymDense; S is not mutated.
// Complexity: O(n²).
func AddDiagonal(s mat.Symmetric, lambda float64) *mat.SymDense {
	n := s.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(s)
	for i := 0; i < n; i++ {
		out.SetSym(i, i, out.At(i, i)+lambda)
	}

	return out
}

// MaxAbsDiag returns max_i |S[i,i]|; zero for an empty matrix.
// Complexity: O(n).
func MaxAbsDiag(s mat.Symmetric) float64 {
	var m float64
	for i := 0; i < s.SymmetricDim(); i++ {
		m = math.Max(m, math.Abs(s.At(i, i)))
	}

	return m
}

// SubSym copies the principal block [off, off+dim) of s into a fresh SymDense.
// Complexity: O(dim²).
func SubSym(s mat.Symmetric, off, dim int) (*mat.SymDense, error) {
	n := s.SymmetricDim()
	if off < 0 || dim <= 0 || off+dim > n {
		return nil, validatorErrorf("SubSym", fmt.Errorf("off=%d dim=%d n=%d: %w", off, dim, n, ErrBadShape))
	}
	out := mat.NewSymDense(dim, nil)
	var i, j int
	for i = 0; i < dim; i++ {
		for j = i; j < dim; j++ {
			out.SetSym(i, j, s.At(off+i, off+j))
		}
	}

	return out, nil
}
