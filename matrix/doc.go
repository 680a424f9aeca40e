// Package matrix is the numeric policy layer of treefit on top of gonum/mat.
//
// The package provides:
//
//   - Validators (ValidateFinite, ValidateSquare, ValidateSymmetric) that every
//     ingestion path uses before data reaches the Kalman engine.
//   - Symmetric helpers (NewSym, Symmetrize, AddDiagonal, MaxAbsDiag) used to
//     keep covariances exactly symmetric after each update.
//   - Spectral checks (Eigenvalues, MinEigenvalue, IsPSD) used by tests and
//     diagnostics to verify positive semi-definiteness.
//
// Dense kernels themselves (products, Cholesky, eigen) are gonum's; this
// package only decides what counts as acceptable numbers.
package matrix
