// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for numeric validation checks.
//  - Keep the Kalman engine and the particle constructors minimal by delegating
//    nil/shape/finite/symmetry checks here.
//  - Return sentinel errors wrapped with a validator tag so call sites can
//    match them via errors.Is.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.
//  - Symmetry check runs O(n²) on the strict upper triangle only.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultSymmetryTol is the relative tolerance used by ValidateSymmetric
// callers that have no stronger opinion. Relative to max(1, |A[i,j]|).
const DefaultSymmetryTol = 1e-9

// validatorErrorf wraps an underlying error with the given validator tag.
// Used internally to maintain consistent labeling of sentinel violations.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
//
// Returns ErrNilMatrix if m == nil.
// Complexity: O(1).
func ValidateNotNil(m mat.Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
//
// Errors: ErrNilMatrix, ErrNonSquare.
// Complexity: O(1).
func ValidateSquare(m mat.Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateSquare", err)
	}
	r, c := m.Dims()
	if r != c {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateFinite rejects any NaN or ±Inf entry of m.
//
// Implementation:
//   - Stage 1: nil guard.
//   - Stage 2: fixed i→j scan, first offending element wins.
//
// Errors: ErrNilMatrix, ErrNaNInf (wrapped with the offending coordinates).
// Complexity: O(r*c).
func ValidateFinite(m mat.Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateFinite", err)
	}
	r, c := m.Dims()
	var (
		i, j int     // loop counters
		v    float64 // current element
	)
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			v = m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validatorErrorf("ValidateFinite", fmt.Errorf("At(%d,%d): %w", i, j, ErrNaNInf))
			}
		}
	}

	return nil
}

// ValidateFiniteSlice rejects any NaN or ±Inf entry of x.
// Complexity: O(len(x)).
func ValidateFiniteSlice(x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf("ValidateFiniteSlice", fmt.Errorf("[%d]: %w", i, ErrNaNInf))
		}
	}

	return nil
}

// ValidateSymmetric checks A is square, finite and symmetric within a relative
// tolerance: |A[i,j] − A[j,i]| ≤ tol·max(1, |A[i,j]|, |A[j,i]|) for all i<j.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf (matrix or tol), ErrAsymmetry.
// Complexity: O(n²). Space: O(1).
func ValidateSymmetric(m mat.Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	tol = math.Abs(tol)
	if err := ValidateFinite(m); err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}

	n, _ := m.Dims()
	var (
		i, j     int
		aij, aji float64
		scale    float64
	)
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			aij, aji = m.At(i, j), m.At(j, i)
			scale = math.Max(1, math.Max(math.Abs(aij), math.Abs(aji)))
			if math.Abs(aij-aji) > tol*scale {
				return validatorErrorf("ValidateSymmetric", ErrAsymmetry)
			}
		}
	}

	return nil
}

// ValidateCovariance is the composite check applied to every measurement
// covariance: Symmetric(tol) → non-negative diagonal.
//
// Errors: everything ValidateSymmetric returns, plus ErrNegativeVariance.
// Complexity: O(n²).
func ValidateCovariance(m mat.Matrix, tol float64) error {
	if err := ValidateSymmetric(m, tol); err != nil {
		return validatorErrorf("ValidateCovariance", err)
	}
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		if m.At(i, i) < 0 {
			return validatorErrorf("ValidateCovariance", fmt.Errorf("At(%d,%d): %w", i, i, ErrNegativeVariance))
		}
	}

	return nil
}
