// SPDX-License-Identifier: MIT

// Package matrix - spectral checks for covariance health.
//
// Purpose:
//   - Expose eigenvalues of symmetric matrices (gonum EigenSym) for diagnostics.
//   - Decide positive semi-definiteness with a scale-aware negative epsilon.
//
// Notes:
//   - The fitter never calls these on the hot path; they back tests and the
//     optional covariance health check of the driver.

package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultPSDEps is the relative negative slack accepted by IsPSD:
// λ_min ≥ −eps·max(1, |λ_max|).
const DefaultPSDEps = 1e-9

// Eigenvalues returns the eigenvalues of s in ascending order.
//
// Errors: ErrNilMatrix, ErrNaNInf, ErrEigenFailed.
// Complexity: O(n³).
func Eigenvalues(s mat.Symmetric) ([]float64, error) {
	if s == nil {
		return nil, validatorErrorf("Eigenvalues", ErrNilMatrix)
	}
	if s.SymmetricDim() == 0 {
		return nil, validatorErrorf("Eigenvalues", ErrBadShape)
	}
	if err := ValidateFinite(s); err != nil {
		return nil, validatorErrorf("Eigenvalues", err)
	}
	var es mat.EigenSym
	if ok := es.Factorize(s, false); !ok {
		return nil, validatorErrorf("Eigenvalues", ErrEigenFailed)
	}

	// gonum returns them in ascending order already.
	return es.Values(nil), nil
}

// MinEigenvalue returns the smallest eigenvalue of s.
// Complexity: O(n³).
func MinEigenvalue(s mat.Symmetric) (float64, error) {
	vals, err := Eigenvalues(s)
	if err != nil {
		return 0, validatorErrorf("MinEigenvalue", err)
	}

	return vals[0], nil
}

// IsPSD reports whether s is positive semi-definite up to the relative slack
// eps (λ_min ≥ −eps·max(1, |λ_max|)). A negative eps is taken by magnitude.
//
// Complexity: O(n³).
func IsPSD(s mat.Symmetric, eps float64) (bool, error) {
	vals, err := Eigenvalues(s)
	if err != nil {
		return false, validatorErrorf("IsPSD", err)
	}
	lo, hi := vals[0], vals[len(vals)-1]
	scale := math.Max(1, math.Abs(hi))

	return lo >= -math.Abs(eps)*scale, nil
}
