// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All validators MUST return these sentinels and tests MUST check them
// via errors.Is. No validator should panic on user-triggered error conditions.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Callers translating a matrix failure into a
// treefit class (ErrBadInput, ErrDimensionMismatch) join both sentinels with
// fmt.Errorf("%w: %w", treefit.ErrX, err) so either can be matched.

var (
	// ErrNilMatrix indicates that a nil matrix or vector was passed in.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrBadShape is returned when a requested shape or a flat buffer length is
	// inconsistent (e.g., n<=0, len(data) != n*n).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated
	// symmetry within the configured relative tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNegativeVariance signals a negative diagonal entry in a covariance.
	ErrNegativeVariance = errors.New("matrix: negative variance on diagonal")

	// ErrEigenFailed indicates that the symmetric eigen decomposition failed.
	ErrEigenFailed = errors.New("matrix: eigen decomposition failed")
)
