// Package kalman applies one extended-Kalman measurement update to a global
// parameter space.
//
// Given a projection (r, H, V) and the space (x, P):
//
//	R  = V + H·P·Hᵀ
//	K  = P·Hᵀ·R⁻¹
//	x' = x + K·r
//	P' = sym(P − K·H·P)
//	χ² = rᵀ·R⁻¹·r
//
// R is inverted through a Cholesky factorization. When that fails the engine
// adds λ·I with λ = RegularizationFactor·max|diag R| and retries once; a zero
// λ or a second failure yields treefit.ErrSingular and leaves the space
// untouched. The commit is atomic: non-finite results are rejected.
package kalman
