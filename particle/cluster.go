// SPDX-License-Identifier: MIT

package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/paramspace"
)

func photonDim(n *Node) int {
	if n.EnergyPolicy == EnergyInState {
		return 4
	}

	return 3
}

func (n *Node) clusterPosition() r3.Vec {
	p := n.Measurement.Params

	return r3.Vec{X: p[ClusterX], Y: p[ClusterY], Z: p[ClusterZ]}
}

// clusterEnergy returns the measured energy, or ok=false for a hadron
// cluster measured without one.
func (n *Node) clusterEnergy() (float64, bool) {
	if n.Measurement.Len() <= ClusterE {
		return 0, false
	}

	return n.Measurement.Params[ClusterE], true
}

// seedCluster points the momentum from origin to the cluster with the
// measured energy as magnitude (1 GeV when there is none, or the current
// magnitude of a hadron already seeded).
func seedCluster(c *InitContext, n *Node, origin r3.Vec) {
	dir := r3.Sub(n.clusterPosition(), origin)
	if r3.Norm(dir) == 0 {
		return
	}
	mag, ok := n.clusterEnergy()
	if ok && n.Kind == KindNeutralHadron {
		mag = math.Sqrt(math.Max(mag*mag-n.Mass*n.Mass, 0))
	}
	if !ok || mag <= 0 {
		mag = r3.Norm(n.Momentum(c.Space))
		if mag == 0 {
			mag = 1
		}
	}
	c.SetMomentum(n, r3.Scale(mag, r3.Unit(dir)))
	c.SetEnergy(n, math.Sqrt(mag*mag+n.Mass*n.Mass))
}

func initClusterMotherless(c *InitContext, n *Node) error {
	seedCluster(c, n, r3.Vec{})

	return nil
}

func initClusterWithMother(c *InitContext, n *Node) error {
	seedCluster(c, n, c.ProductionVertex(n))

	return nil
}

// directionRows fills two direction residuals
//
//	r_j = (c_j − v_j) − (p_j/p_i)(c_i − v_i)
//
// where i is the dominant momentum axis. H takes −∂r/∂(v, p); the returned
// 2×3 matrix is ∂r/∂c for covariance propagation.
func directionRows(proj *constraint.Projection, mother, n *Node, s *paramspace.Space) (*mat.Dense, error) {
	c := n.clusterPosition()
	v, p := mother.Vertex(s), n.Momentum(s)
	cv := [3]float64{c.X, c.Y, c.Z}
	vv := [3]float64{v.X, v.Y, v.Z}
	pv := [3]float64{p.X, p.Y, p.Z}

	i := 0
	for k := 1; k < 3; k++ {
		if math.Abs(pv[k]) > math.Abs(pv[i]) {
			i = k
		}
	}
	if pv[i] == 0 {
		return nil, fmt.Errorf("%s %q: zero momentum: %w", n.Kind, n.Name, treefit.ErrSingular)
	}
	dc := mat.NewDense(2, 3, nil)
	di := cv[i] - vv[i]
	row := 0
	for j := 0; j < 3; j++ {
		if j == i {
			continue
		}
		ratio := pv[j] / pv[i]
		proj.Residual.SetVec(row, (cv[j]-vv[j])-ratio*di)

		proj.AddJacobian(row, mother.posIndex+j, 1)
		proj.AddJacobian(row, mother.posIndex+i, -ratio)
		proj.AddJacobian(row, n.momIndex+j, di/pv[i])
		proj.AddJacobian(row, n.momIndex+i, -ratio*di/pv[i])

		dc.Set(row, j, 1)
		dc.Set(row, i, -ratio)
		row++
	}

	return dc, nil
}

// propagateCov sets V = J·Σ·Jᵀ.
func propagateCov(proj *constraint.Projection, jac mat.Matrix, cov mat.Symmetric) {
	var tmp mat.Dense
	tmp.Mul(jac, cov)
	var v mat.Dense
	v.Mul(&tmp, jac.T())
	m, _ := v.Dims()
	for a := 0; a < m; a++ {
		for b := a; b < m; b++ {
			proj.V.SetSym(a, b, 0.5*(v.At(a, b)+v.At(b, a)))
		}
	}
}

// projectPhoton builds the two direction residuals and the energy residual,
// plus the massless constraint E² − |p|² = 0 when E is a state parameter.
func projectPhoton(t *Tree, n *Node, s *paramspace.Space) ([]*constraint.Projection, error) {
	mother := t.Node(n.Mother)
	meas := constraint.New(constraint.KindPhoton, n.Index, 3, s.Dim())
	dc, err := directionRows(meas, mother, n, s)
	if err != nil {
		return nil, err
	}
	// ∂r/∂(x, y, z, E) for the three measured rows.
	jc := mat.NewDense(3, 4, nil)
	for a := 0; a < 2; a++ {
		for b := 0; b < 3; b++ {
			jc.Set(a, b, dc.At(a, b))
		}
	}
	jc.Set(2, ClusterE, 1)
	propagateCov(meas, jc, n.Measurement.Cov)

	e, _ := n.clusterEnergy()
	p := n.Momentum(s)
	if !n.HasEnergy() {
		norm := r3.Norm(p)
		if norm == 0 {
			return nil, fmt.Errorf("photon %q: zero momentum: %w", n.Name, treefit.ErrSingular)
		}
		meas.Residual.SetVec(2, e-norm)
		meas.SetJacobian(2, paramspace.Range{Offset: n.momIndex, Dim: 3}, p.X/norm, p.Y/norm, p.Z/norm)

		return []*constraint.Projection{meas}, nil
	}

	energy := n.Energy(s)
	meas.Residual.SetVec(2, e-energy)
	meas.AddJacobian(2, n.eIndex, 1)

	massless := constraint.New(constraint.KindPhoton, n.Index, 1, s.Dim()).Exact()
	massless.Residual.SetVec(0, -(energy*energy - r3.Norm2(p)))
	massless.SetJacobian(0, paramspace.Range{Offset: n.momIndex, Dim: 4}, -2*p.X, -2*p.Y, -2*p.Z, 2*energy)

	return []*constraint.Projection{constraint.Concat(constraint.KindPhoton, n.Index, meas, massless)}, nil
}

// projectNeutralHadron builds the two direction residuals; |p| stays free.
func projectNeutralHadron(t *Tree, n *Node, s *paramspace.Space) ([]*constraint.Projection, error) {
	mother := t.Node(n.Mother)
	proj := constraint.New(constraint.KindNeutralHadron, n.Index, 2, s.Dim())
	dc, err := directionRows(proj, mother, n, s)
	if err != nil {
		return nil, err
	}
	jc := mat.NewDense(2, n.Measurement.Len(), nil)
	jc.Slice(0, 2, 0, 3).(*mat.Dense).Copy(dc)
	propagateCov(proj, jc, n.Measurement.Cov)

	return []*constraint.Projection{proj}, nil
}
