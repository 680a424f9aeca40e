// SPDX-License-Identifier: MIT

package particle

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/helix"
	"github.com/katalvlaran/treefit/paramspace"
)

// seedRounds is the number of helix closest-approach refinements.
const seedRounds = 3

func compositeDim(n *Node) int {
	if n.hasFlightLengthSpec() {
		return 8
	}

	return 7
}

func compositeMeasurementDim(n *Node) int {
	m := 4
	if n.hasFlightLengthSpec() {
		m += 3
	}
	if n.MassConstraint {
		m++
	}

	return m
}

// initCompositeMotherless seeds the vertex from the daughters: the two
// hardest tracks, else the seeded daughter composites, else a prior. The
// momentum is the sum of the daughters seeded so far.
func initCompositeMotherless(c *InitContext, n *Node) error {
	var (
		tracks []*Node
		sub    []r3.Vec
		prior  *Node
	)
	for _, d := range n.Daughters {
		dn := c.Tree.Node(d)
		switch {
		case dn.Kind == KindTrack:
			tracks = append(tracks, dn)
		case dn.HasVertex() && c.Seeded(dn):
			sub = append(sub, dn.Vertex(c.Space))
		case dn.Kind == KindExternalPrior && prior == nil:
			prior = dn
		}
	}
	switch {
	case len(tracks) >= 2:
		sort.SliceStable(tracks, func(a, b int) bool {
			return math.Abs(tracks[a].Measurement.Params[helix.Omega]) < math.Abs(tracks[b].Measurement.Params[helix.Omega])
		})
		a, b := tracks[0], tracks[1]
		v, err := helix.SeedVertex(a.trackParams(), a.Measurement.Field, b.trackParams(), b.Measurement.Field, seedRounds)
		if err == nil {
			c.SetVertex(n, v)
		}
	case len(sub) > 0:
		var mean r3.Vec
		for _, v := range sub {
			mean = r3.Add(mean, v)
		}
		c.SetVertex(n, r3.Scale(1/float64(len(sub)), mean))
	case prior != nil:
		c.SetVertex(n, prior.clusterPosition())
	}
	sumDaughters(c, n)

	return nil
}

// initCompositeWithMother falls back to the mother's vertex.
func initCompositeWithMother(c *InitContext, n *Node) error {
	if !c.Seeded(n) {
		c.SetVertex(n, c.ProductionVertex(n))
	}

	return nil
}

// finalizeComposite recomputes the 4-momentum from the daughters and the
// flight length from the vertex displacement along the momentum.
func finalizeComposite(c *InitContext, n *Node) error {
	sumDaughters(c, n)
	if n.HasFlightLength() {
		p := n.Momentum(c.Space)
		if r3.Norm(p) > 0 {
			d := r3.Sub(n.Vertex(c.Space), c.ProductionVertex(n))
			c.SetFlightLength(n, r3.Dot(d, r3.Unit(p)))
		}
	}

	return nil
}

func sumDaughters(c *InitContext, n *Node) {
	var (
		p r3.Vec
		e float64
	)
	for _, d := range n.Daughters {
		dn := c.Tree.Node(d)
		if !dn.HasMomentum() {
			continue
		}
		p = r3.Add(p, dn.Momentum(c.Space))
		e += dn.Energy(c.Space)
	}
	c.SetMomentum(n, p)
	c.SetEnergy(n, e)
}

// projectComposite returns the kinematic, geometric and mass constraints, in
// that order, all exact. The geometric constraint reads the composite's
// momentum, so it follows the kinematic one that fixes it.
func projectComposite(t *Tree, n *Node, s *paramspace.Space) ([]*constraint.Projection, error) {
	out := make([]*constraint.Projection, 0, 3)
	out = append(out, kinematicConstraint(t, n, s))
	if n.HasFlightLength() {
		out = append(out, geometricConstraint(t, n, s))
	}
	if n.MassConstraint {
		out = append(out, massConstraint(n, s))
	}

	return out, nil
}

// geometricConstraint: v − v_mother − L·p̂ = 0.
func geometricConstraint(t *Tree, n *Node, s *paramspace.Space) *constraint.Projection {
	mother := t.Node(n.Mother)
	v, vm, p := n.Vertex(s), mother.Vertex(s), n.Momentum(s)
	l := n.FlightLength(s)
	norm := r3.Norm(p)
	var u r3.Vec
	if norm > 0 {
		u = r3.Scale(1/norm, p)
	}
	h := r3.Sub(r3.Sub(v, vm), r3.Scale(l, u))
	hv := [3]float64{h.X, h.Y, h.Z}
	uv := [3]float64{u.X, u.Y, u.Z}

	proj := constraint.New(constraint.KindGeometric, n.Index, 3, s.Dim()).Exact()
	for i := 0; i < 3; i++ {
		proj.Residual.SetVec(i, -hv[i])
		proj.AddJacobian(i, n.posIndex+i, 1)
		proj.AddJacobian(i, mother.posIndex+i, -1)
		proj.AddJacobian(i, n.lenIndex, -uv[i])
		if norm == 0 {
			continue
		}
		// ∂(L·p̂_i)/∂p_j = L·(δ_ij − p̂_i·p̂_j)/|p|.
		for j := 0; j < 3; j++ {
			var delta float64
			if i == j {
				delta = 1
			}
			proj.AddJacobian(i, n.momIndex+j, -l*(delta-uv[i]*uv[j])/norm)
		}
	}

	return proj
}

// kinematicConstraint: P_mother − Σ P_daughter = 0 over (px, py, pz, E).
func kinematicConstraint(t *Tree, n *Node, s *paramspace.Space) *constraint.Projection {
	proj := constraint.New(constraint.KindKinematic, n.Index, 4, s.Dim()).Exact()
	p, e := n.Momentum(s), n.Energy(s)
	for i := 0; i < 3; i++ {
		proj.AddJacobian(i, n.momIndex+i, 1)
	}
	proj.AddJacobian(3, n.eIndex, 1)

	for _, d := range n.Daughters {
		dn := t.Node(d)
		if !dn.HasMomentum() {
			continue
		}
		pd := dn.Momentum(s)
		ed := dn.Energy(s)
		p = r3.Sub(p, pd)
		e -= ed
		for i := 0; i < 3; i++ {
			proj.AddJacobian(i, dn.momIndex+i, -1)
		}
		if dn.HasEnergy() {
			proj.AddJacobian(3, dn.eIndex, -1)
			continue
		}
		if ed > 0 {
			proj.SetJacobian(3, paramspace.Range{Offset: dn.momIndex, Dim: 3}, -pd.X/ed, -pd.Y/ed, -pd.Z/ed)
		}
	}
	proj.Residual.SetVec(0, -p.X)
	proj.Residual.SetVec(1, -p.Y)
	proj.Residual.SetVec(2, -p.Z)
	proj.Residual.SetVec(3, -e)

	return proj
}

// massConstraint: m² − (E² − |p|²) = 0.
func massConstraint(n *Node, s *paramspace.Space) *constraint.Projection {
	p, e := n.Momentum(s), n.Energy(s)
	proj := constraint.New(constraint.KindMass, n.Index, 1, s.Dim()).Exact()
	proj.Residual.SetVec(0, n.Mass*n.Mass-(e*e-r3.Norm2(p)))
	proj.SetJacobian(0, paramspace.Range{Offset: n.momIndex, Dim: 4}, -2*p.X, -2*p.Y, -2*p.Z, 2*e)

	return proj
}
