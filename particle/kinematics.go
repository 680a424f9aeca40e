// SPDX-License-Identifier: MIT

package particle

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit/matrix"
	"github.com/katalvlaran/treefit/paramspace"
)

// InvariantMass returns m = √(E² − |p|²) and its error propagated from the
// 4×4 covariance of (px, py, pz, E). A non-physical m² < 0 yields m = 0 and a
// zero error.
func InvariantMass(p r3.Vec, e float64, cov mat.Symmetric) (m, sigma float64) {
	m2 := e*e - r3.Norm2(p)
	if m2 <= 0 {
		return 0, 0
	}
	m = math.Sqrt(m2)
	if cov == nil {
		return m, 0
	}
	jac := mat.NewVecDense(4, []float64{-p.X / m, -p.Y / m, -p.Z / m, e / m})
	v := mat.Inner(jac, cov, jac)

	return m, math.Sqrt(math.Max(v, 0))
}

// MassOf returns the fitted invariant mass of the node and its error. Nodes
// whose energy is derived report their mass hypothesis with zero error.
func (n *Node) MassOf(s *paramspace.Space) (float64, float64) {
	if !n.HasEnergy() || !n.HasMomentum() || n.eIndex != n.momIndex+3 {
		return n.Mass, 0
	}
	cov, err := matrix.SubSym(s.Covariance(), n.momIndex, 4)
	if err != nil {
		return n.Mass, 0
	}

	return InvariantMass(n.Momentum(s), n.Energy(s), cov)
}

// DecayLengthOf returns the fitted flight length and its error; zeros for a
// node without one.
func (n *Node) DecayLengthOf(s *paramspace.Space) (float64, float64) {
	if !n.HasFlightLength() {
		return 0, 0
	}
	v := s.Covariance().At(n.lenIndex, n.lenIndex)

	return n.FlightLength(s), math.Sqrt(math.Max(v, 0))
}
