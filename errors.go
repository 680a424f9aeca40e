// SPDX-License-Identifier: MIT
// Package treefit: sentinel error set shared by every subpackage.
//
// Subpackages never define their own copies of these conditions; they wrap
// the sentinels with an operation tag, fmt.Errorf("<op>: %w", ErrX), and
// callers match with errors.Is.
//
// ERROR CLASSES:
// construction (fatal, candidate rejected) -> ErrBadInput, ErrDimensionMismatch,
// ErrInvalidTreeTopology; fit-time -> ErrSingular, ErrNotConverged.

package treefit

import "errors"

var (
	// ErrBadInput is returned when a measurement is malformed or carries
	// NaN/±Inf values. Raised at construction.
	ErrBadInput = errors.New("treefit: bad input")

	// ErrDimensionMismatch indicates that a residual, Jacobian or covariance
	// does not match the dimension a node or parameter space declares.
	ErrDimensionMismatch = errors.New("treefit: dimension mismatch")

	// ErrSingular indicates a residual covariance that could not be inverted
	// even after diagonal regularization.
	ErrSingular = errors.New("treefit: singular residual covariance")

	// ErrNotConverged indicates that the iteration cap was reached, or the
	// chi-square diverged, without satisfying the convergence predicate.
	ErrNotConverged = errors.New("treefit: fit did not converge")

	// ErrInvalidTreeTopology indicates a cycle, a dangling daughter reference,
	// a node with two mothers or an orphan node in the decay tree.
	ErrInvalidTreeTopology = errors.New("treefit: invalid tree topology")
)
