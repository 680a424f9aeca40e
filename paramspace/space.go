// SPDX-License-Identifier: MIT

package paramspace

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/matrix"
)

// Range is a contiguous block [Offset, Offset+Dim) of the global vector.
type Range struct {
	Offset int
	Dim    int
}

// End returns the first index past the range.
func (r Range) End() int { return r.Offset + r.Dim }

// Index returns the global index of the i-th parameter of the range.
func (r Range) Index(i int) int { return r.Offset + i }

// Space is the global state vector x and its covariance P.
type Space struct {
	x *mat.VecDense
	p *mat.SymDense
}

func spaceErrorf(tag string, err error) error {
	return fmt.Errorf("paramspace.%s: %w", tag, err)
}

// Allocate creates a zeroed Space of the given dimension.
// Errors: treefit.ErrDimensionMismatch for totalDim ≤ 0.
func Allocate(totalDim int) (*Space, error) {
	if totalDim <= 0 {
		return nil, spaceErrorf("Allocate", fmt.Errorf("dim=%d: %w", totalDim, treefit.ErrDimensionMismatch))
	}

	return &Space{
		x: mat.NewVecDense(totalDim, nil),
		p: mat.NewSymDense(totalDim, nil),
	}, nil
}

// Dim returns the dimension of the global vector.
func (s *Space) Dim() int { return s.x.Len() }

// State returns the live state vector. Callers must not retain it across Commit.
func (s *Space) State() *mat.VecDense { return s.x }

// Covariance returns the live covariance. Callers must not retain it across Commit.
func (s *Space) Covariance() *mat.SymDense { return s.p }

func (s *Space) check(tag string, r Range) error {
	if r.Offset < 0 || r.Dim <= 0 || r.End() > s.Dim() {
		return spaceErrorf(tag, fmt.Errorf("range [%d,%d) in dim %d: %w", r.Offset, r.End(), s.Dim(), treefit.ErrDimensionMismatch))
	}

	return nil
}

// View returns no-copy views of the range: writes to the vector view are
// visible in the global state.
// Errors: treefit.ErrDimensionMismatch for an out-of-bounds range.
func (s *Space) View(r Range) (*mat.VecDense, mat.Symmetric, error) {
	if err := s.check("View", r); err != nil {
		return nil, nil, err
	}
	v := s.x.SliceVec(r.Offset, r.End()).(*mat.VecDense)
	c := s.p.SliceSym(r.Offset, r.End())

	return v, c, nil
}

// Slice returns copies of the range's state and covariance.
// Errors: treefit.ErrDimensionMismatch for an out-of-bounds range.
func (s *Space) Slice(r Range) (*mat.VecDense, *mat.SymDense, error) {
	if err := s.check("Slice", r); err != nil {
		return nil, nil, err
	}
	v := mat.VecDenseCopyOf(s.x.SliceVec(r.Offset, r.End()))
	c, err := matrix.SubSym(s.p, r.Offset, r.Dim)
	if err != nil {
		return nil, nil, spaceErrorf("Slice", err)
	}

	return v, c, nil
}

// Reset zeroes state and covariance.
func (s *Space) Reset() {
	s.x.Zero()
	s.p.Zero()
}

// ResetCovariance zeroes the covariance and keeps the state.
func (s *Space) ResetCovariance() { s.p.Zero() }

// SetVariance sets the diagonal covariance entries of r to v.
// Errors: treefit.ErrDimensionMismatch, treefit.ErrBadInput for v < 0 or non-finite.
func (s *Space) SetVariance(r Range, v float64) error {
	if err := s.check("SetVariance", r); err != nil {
		return err
	}
	if v < 0 || matrix.ValidateFiniteSlice([]float64{v}) != nil {
		return spaceErrorf("SetVariance", fmt.Errorf("variance %g: %w", v, treefit.ErrBadInput))
	}
	for i := r.Offset; i < r.End(); i++ {
		s.p.SetSym(i, i, v)
	}

	return nil
}

// Commit atomically replaces state and covariance. The inputs are copied.
//
// Errors:
//   - treefit.ErrDimensionMismatch if the shapes do not match the space.
//   - treefit.ErrSingular if either carries NaN/±Inf.
func (s *Space) Commit(state mat.Vector, cov mat.Symmetric) error {
	if state == nil || cov == nil || state.Len() != s.Dim() || cov.SymmetricDim() != s.Dim() {
		return spaceErrorf("Commit", treefit.ErrDimensionMismatch)
	}
	if err := matrix.ValidateFinite(state); err != nil {
		return spaceErrorf("Commit", fmt.Errorf("%w: %w", treefit.ErrSingular, err))
	}
	if err := matrix.ValidateFinite(cov); err != nil {
		return spaceErrorf("Commit", fmt.Errorf("%w: %w", treefit.ErrSingular, err))
	}
	s.x.CopyVec(state)
	s.p.CopySym(cov)

	return nil
}

// Clone returns a deep copy of the space.
func (s *Space) Clone() *Space {
	p := mat.NewSymDense(s.Dim(), nil)
	p.CopySym(s.p)

	return &Space{x: mat.VecDenseCopyOf(s.x), p: p}
}
