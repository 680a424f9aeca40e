// SPDX-License-Identifier: MIT

package constraint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/paramspace"
)

// Kind identifies the physical origin of a projection.
type Kind uint8

// Projection kinds.
const (
	KindTrack Kind = iota
	KindPhoton
	KindNeutralHadron
	KindKinematic
	KindMass
	KindGeometric
	KindExternalPrior
)

var kindNames = [...]string{
	KindTrack:         "track",
	KindPhoton:        "photon",
	KindNeutralHadron: "neutral-hadron",
	KindKinematic:     "kinematic",
	KindMass:          "mass",
	KindGeometric:     "geometric",
	KindExternalPrior: "external-prior",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Projection is one linearized constraint. See the package doc for the sign
// conventions.
type Projection struct {
	Kind     Kind
	Node     int
	Residual *mat.VecDense
	H        *mat.Dense
	V        *mat.SymDense
}

func projectionErrorf(tag string, err error) error {
	return fmt.Errorf("constraint.%s: %w", tag, err)
}

// New returns a zero projection with rows residual components over a global
// state of dimension stateDim. The covariance starts as a zero matrix; call
// Exact to drop it.
func New(kind Kind, node, rows, stateDim int) *Projection {
	return &Projection{
		Kind:     kind,
		Node:     node,
		Residual: mat.NewVecDense(rows, nil),
		H:        mat.NewDense(rows, stateDim, nil),
		V:        mat.NewSymDense(rows, nil),
	}
}

// Exact marks the projection as a hard constraint (V = 0).
func (p *Projection) Exact() *Projection {
	p.V = nil

	return p
}

// Rows returns the number of residual components.
func (p *Projection) Rows() int { return p.Residual.Len() }

// SetJacobian writes the derivatives of row with respect to the parameters of
// r, in range order. Extra derivatives beyond r.Dim are ignored.
func (p *Projection) SetJacobian(row int, r paramspace.Range, derivs ...float64) {
	for i, d := range derivs {
		if i >= r.Dim {
			break
		}
		p.H.Set(row, r.Index(i), d)
	}
}

// AddJacobian accumulates v into H[row, col]. Used when two ranges overlap,
// for example a node constraining its own vertex through its mother.
func (p *Projection) AddJacobian(row, col int, v float64) {
	p.H.Set(row, col, p.H.At(row, col)+v)
}

// ScatterColumns adds the columns of local (rows×len(cols)) to the global
// columns cols of H. Like AddJacobian it accumulates, so a parameter reached
// through two paths sums their derivatives.
func (p *Projection) ScatterColumns(local mat.Matrix, cols []int) {
	rows, _ := local.Dims()
	var i, j int
	for i = 0; i < rows; i++ {
		for j = range cols {
			p.AddJacobian(i, cols[j], local.At(i, j))
		}
	}
}

// Validate checks the projection against the global dimension and the row
// count the owning node declares.
//
// Errors: treefit.ErrDimensionMismatch.
func (p *Projection) Validate(stateDim, declaredRows int) error {
	if p == nil || p.Residual == nil || p.H == nil {
		return projectionErrorf("Validate", fmt.Errorf("incomplete projection: %w", treefit.ErrDimensionMismatch))
	}
	m := p.Residual.Len()
	hr, hc := p.H.Dims()
	switch {
	case declaredRows >= 0 && m != declaredRows:
		return projectionErrorf("Validate", fmt.Errorf("%s node %d: %d rows, declared %d: %w", p.Kind, p.Node, m, declaredRows, treefit.ErrDimensionMismatch))
	case hr != m || hc != stateDim:
		return projectionErrorf("Validate", fmt.Errorf("%s node %d: H is %dx%d, want %dx%d: %w", p.Kind, p.Node, hr, hc, m, stateDim, treefit.ErrDimensionMismatch))
	case p.V != nil && p.V.SymmetricDim() != m:
		return projectionErrorf("Validate", fmt.Errorf("%s node %d: V is %d, want %d: %w", p.Kind, p.Node, p.V.SymmetricDim(), m, treefit.ErrDimensionMismatch))
	}

	return nil
}

// Concat stacks projections of the same node into one, summing their rows.
// A block whose V is nil contributes zero covariance rows.
func Concat(kind Kind, node int, parts ...*Projection) *Projection {
	var rows, n int
	for _, q := range parts {
		rows += q.Rows()
		_, n = q.H.Dims()
	}
	out := New(kind, node, rows, n)
	var off int
	for _, q := range parts {
		m := q.Rows()
		for i := 0; i < m; i++ {
			out.Residual.SetVec(off+i, q.Residual.AtVec(i))
			for j := 0; j < n; j++ {
				out.H.Set(off+i, j, q.H.At(i, j))
			}
			if q.V == nil {
				continue
			}
			for j := i; j < m; j++ {
				out.V.SetSym(off+i, off+j, q.V.At(i, j))
			}
		}
		off += m
	}

	return out
}
